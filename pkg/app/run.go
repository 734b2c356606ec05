// Package app provides the shared entry point for the warelay binary.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/warelay/internal/config"
	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/internal/security"
	"github.com/flemzord/warelay/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// EnvFile is the dotenv file loaded before the environment is read.
	// Empty means config.DefaultEnvFile.
	EnvFile string

	// ConfigPath is an explicit YAML overlay. Empty means $WARELAY_CONFIG,
	// then ./warelay.yaml when it exists.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Run loads configuration, starts all modules, and blocks until SIGINT or
// SIGTERM is received.
func Run(params RunParams) error {
	cfg, err := loadConfig(params)
	if err != nil {
		return err
	}

	out := params.LogOutput
	if out == nil {
		out = os.Stderr
	}
	redactor := security.NewRedactor()
	redactor.AddLiteral(cfg.Secrets()...)
	logger := security.NewLogger(out, cfg.SlogLevel(), redactor)
	slog.SetDefault(logger)

	logger.Info("starting warelay",
		"version", params.Version, "commit", params.Commit, "built", params.Date)

	tp, shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	appCtx := core.NewAppContext(logger, cfg.WhatsApp.SessionDir)
	application, err := Build(cfg, appCtx, Deps{TracerProvider: tp})
	if err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())
	application.Stop()
	logger.Info("shutdown complete")
	return nil
}

// CheckConfig loads and validates the configuration and assembles the
// modules without starting them. It then writes the module list and the
// effective settings to w with credentials masked.
func CheckConfig(w io.Writer, params RunParams) error {
	cfg, err := loadConfig(params)
	if err != nil {
		return err
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	application, err := Build(cfg, core.NewAppContext(quiet, cfg.WhatsApp.SessionDir), Deps{})
	if err != nil {
		return err
	}
	redacted := cfg.Redacted()
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	ids := application.ModuleIDs()
	var b strings.Builder
	fmt.Fprintf(&b, "Configuration OK (%d modules)\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "  %s\n", id)
	}
	b.Write(data)
	_, err = io.WriteString(w, b.String())
	return err
}

func loadConfig(params RunParams) (*config.Config, error) {
	envFile := params.EnvFile
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	cfg, err := config.LoadFrom(envFile, params.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
