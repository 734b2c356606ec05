// Package main is the entry point for the warelay CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flemzord/warelay/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type flags struct {
	envFile    string
	configPath string
}

func (f *flags) params() app.RunParams {
	return app.RunParams{
		EnvFile:    f.envFile,
		ConfigPath: f.configPath,
		Version:    version,
		Commit:     commit,
		Date:       date,
	}
}

func rootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "warelay",
		Short:         "Relay WhatsApp conversations to a remote AI model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.Run(f.params())
		},
	}
	root.PersistentFlags().StringVar(&f.envFile, "env-file", "", "Path to the dotenv file (default .env)")
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "Path to the YAML configuration overlay")
	root.AddCommand(versionCmd(), startCmd(f), configCmd(f))
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "warelay %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Connect to WhatsApp and relay messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.Run(f.params())
		},
	}
}

func configCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return app.CheckConfig(c.OutOrStdout(), f.params())
		},
	})
	return cmd
}
