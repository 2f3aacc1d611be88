package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/config"
	"github.com/pgident/pgident/internal/logging"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pgident",
	Short: "pgident — PostgreSQL identifier length checker for declarative schemas",
	Long: `pgident predicts the PostgreSQL identifiers a declarative schema will
produce, flags names that exceed the 63-character limit, suggests shorter
replacements, and generates the rename migrations to apply them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		level := logLevel
		if level == "" {
			level = cfg.Logging.Level
		}
		logger, err := logging.Setup(level, cfg.Logging.Directory)
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.pgident/pgident.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// loadConfig loads the config file if present, falling back to defaults
// so the CLI works without one.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Default()
	}
	return cfg
}
