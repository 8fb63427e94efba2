// Package cli wires the safetools command tree.
package cli

import (
	"log/slog"
	"os"

	"github.com/DeiroLy/Safe-Tools/config"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Every subcommand reads .env first.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "safetools",
		Short:        "RFID tool registry and lending service",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			config.LoadEnv()
			verbose, _ := cmd.Flags().GetBool("verbose")
			slog.SetDefault(newLogger(verbose))
		},
	}
	root.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	root.AddCommand(NewServeCmd())
	root.AddCommand(NewMigrateCmd())
	root.AddCommand(NewInspectCmd())
	root.AddCommand(NewSessionCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
