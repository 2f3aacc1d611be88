package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file interactively",
	Long:  `Walk through prompts to create a pgident configuration file at ~/.pgident/pgident.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("pgident Configuration Setup")
		fmt.Println("===========================")
		fmt.Println()

		fmt.Println("Schema")
		fmt.Println("------")
		schemaPath := prompt(reader, "Schema file", "./schema.yaml")
		fmt.Println()

		fmt.Println("Database (optional, used by verify and rollback --execute)")
		fmt.Println("----------------------------------------------------------")
		dsn := prompt(reader, "PostgreSQL DSN", "")
		dbSchema := prompt(reader, "Database schema", "public")
		fmt.Println()

		fmt.Println("Output")
		fmt.Println("------")
		format := prompt(reader, "Report format (text/json/markdown/html)", "text")

		cfg := &config.Config{
			Version: config.CurrentVersion,
			Schema:  config.SchemaConfig{Path: schemaPath},
			Database: config.DatabaseConfig{
				DSN:    dsn,
				Schema: dbSchema,
			},
			Output: config.OutputConfig{Format: format},
		}

		cfgPath := config.ExpandHome(config.DefaultPath)
		if cfgFile != "" {
			cfgPath = cfgFile
		}

		if err := cfg.Save(cfgPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Printf("Config written to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  pgident validate   — Check schema identifiers against the limit")
		fmt.Println("  pgident review     — Interactively pick replacement names")
		fmt.Println("  pgident generate   — Produce the rename migration SQL")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("  %s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("  %s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}
