// Package gateway serves the operational HTTP surface: a health endpoint
// backed by named checks and the Prometheus scrape endpoint.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flemzord/warelay/internal/core"
)

// ModuleID identifies the gateway.
const ModuleID core.ModuleID = "gateway.http"

// Checks maps a dependency name to a probe that returns nil while the
// dependency is usable.
type Checks map[string]func(ctx context.Context) error

// Compile-time interface guards.
var (
	_ core.Starter = (*Gateway)(nil)
	_ core.Stopper = (*Gateway)(nil)
)

// Gateway is the HTTP gateway module. It is a leaf module: nothing
// imports it.
type Gateway struct {
	config   Config
	logger   *slog.Logger
	checks   Checks
	gatherer prometheus.Gatherer
	server   *http.Server
	addr     net.Addr
}

// New creates a gateway serving checks on /health and gatherer on /metrics.
// A nil gatherer disables /metrics.
func New(cfg Config, logger *slog.Logger, checks Checks, gatherer prometheus.Gatherer) (*Gateway, error) {
	cfg.defaults()
	if _, _, err := net.SplitHostPort(cfg.Bind); err != nil {
		return nil, fmt.Errorf("gateway: invalid bind address %q: %w", cfg.Bind, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:   cfg,
		logger:   logger,
		checks:   checks,
		gatherer: gatherer,
	}, nil
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Start implements core.Starter.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}
	g.addr = ln.Addr()

	go func() {
		g.logger.Info("gateway listening", "addr", g.addr.String())
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address once started.
func (g *Gateway) Addr() net.Addr {
	return g.addr
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
