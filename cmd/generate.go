package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/migration"
	"github.com/pgident/pgident/internal/rollback"
)

var (
	generateChanges string
	generateOutDir  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate rename migration and rollback SQL from a change set",
	Long: `Turn a saved change set into two SQL scripts: a migration that applies
the renames in dependency order, and a rollback that undoes them in
reverse.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := change.Load(generateChanges)
		if err != nil {
			return fmt.Errorf("loading change set: %w", err)
		}
		if len(set.Changes) == 0 {
			return fmt.Errorf("change set %s has no changes", generateChanges)
		}

		gen := migration.NewGenerator()
		ops, err := gen.Generate(set)
		if err != nil {
			return fmt.Errorf("generating migration: %w", err)
		}

		planner := rollback.NewPlanner()
		plan, err := planner.Build(set)
		if err != nil {
			return fmt.Errorf("building rollback plan: %w", err)
		}

		if err := os.MkdirAll(generateOutDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		now := time.Now().UTC()
		stamp := now.Format("20060102150405")

		migrationPath := filepath.Join(generateOutDir, fmt.Sprintf("%s_rename_identifiers.sql", stamp))
		if err := os.WriteFile(migrationPath, []byte(migration.Script(ops, now)), 0o644); err != nil {
			return fmt.Errorf("writing migration: %w", err)
		}

		rollbackPath := filepath.Join(generateOutDir, fmt.Sprintf("%s_rename_identifiers_rollback.sql", stamp))
		if err := os.WriteFile(rollbackPath, []byte(plan.Script()), 0o644); err != nil {
			return fmt.Errorf("writing rollback: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Migration: %s (%d statement(s))\n", migrationPath, len(ops))
		fmt.Fprintf(out, "Rollback:  %s\n", rollbackPath)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateChanges, "changes", "changes.yaml", "change set file from `pgident review`")
	generateCmd.Flags().StringVar(&generateOutDir, "out-dir", "migrations", "directory for generated SQL files")
	rootCmd.AddCommand(generateCmd)
}
