// Package cli implements the xscope command: configuration validation,
// installation diagnostics, and a level admin server.
package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Appender types usable from configuration documents.
	_ "github.com/trickstertwo/xscope/adapter/slog"
	_ "github.com/trickstertwo/xscope/adapter/zap"
	_ "github.com/trickstertwo/xscope/adapter/zerolog"
)

// NewRoot constructs the root command and registers every subcommand.
func NewRoot() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "xscope",
		Short:        "Scoped logging concern tools",
		Long:         "xscope validates logx configuration documents, reports how the logging bridge was installed, and serves runtime level administration.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before running (ignored when missing)")

	root.AddCommand(newValidateCommand())
	root.AddCommand(newDiagCommand())
	root.AddCommand(newServeCommand())
	return root
}

// loadEnv loads path into the environment without overriding variables that
// are already set. A missing file is not an error.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
