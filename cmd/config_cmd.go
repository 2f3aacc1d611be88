package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/config"
	"github.com/pgident/pgident/internal/report"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and validate the pgident configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Schema:\n")
		fmt.Printf("    Path:           %s\n", cfg.Schema.Path)
		fmt.Println()
		fmt.Printf("  Database:\n")
		fmt.Printf("    DSN:            %s\n", maskSecret(cfg.Database.DSN))
		fmt.Printf("    Schema:         %s\n", cfg.Database.Schema)
		fmt.Println()
		fmt.Printf("  Analysis:\n")
		fmt.Printf("    Hard limit:     %d\n", cfg.Analysis.HardLimit)
		fmt.Printf("    Soft threshold: %d\n", cfg.Analysis.SoftThreshold)
		fmt.Println()
		fmt.Printf("  Output:\n")
		fmt.Printf("    Format:         %s\n", cfg.Output.Format)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}

		var errors []string

		if cfg.Analysis.HardLimit < 1 {
			errors = append(errors, "analysis.hard_limit must be positive")
		}
		if cfg.Analysis.SoftThreshold > cfg.Analysis.HardLimit {
			errors = append(errors, "analysis.soft_threshold cannot exceed analysis.hard_limit")
		}
		if _, err := report.ParseFormat(cfg.Output.Format); err != nil {
			errors = append(errors, fmt.Sprintf("output.format: %v", err))
		}

		if len(errors) > 0 {
			fmt.Println("Validation errors:")
			for _, e := range errors {
				fmt.Printf("  - %s\n", e)
			}
			return fmt.Errorf("%d validation error(s)", len(errors))
		}

		fmt.Println("Config is valid.")
		return nil
	},
}

func maskSecret(val string) string {
	if val == "" {
		return "(not set)"
	}
	// Mask everything after the scheme so credentials never print.
	if i := strings.Index(val, "://"); i >= 0 {
		return val[:i+3] + "********"
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
