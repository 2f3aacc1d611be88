package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/db"
	"github.com/pgident/pgident/internal/lock"
	"github.com/pgident/pgident/internal/rollback"
)

var (
	rollbackChanges string
	rollbackExecute bool
	rollbackConfirm bool
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Undo the renames from a change set",
	Long: `Build the rollback plan for a change set and print it as SQL. With
--execute, validate that the renamed identifiers exist and apply the
rollback in a single transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := change.Load(rollbackChanges)
		if err != nil {
			return fmt.Errorf("loading change set: %w", err)
		}

		plan, err := rollback.NewPlanner().Build(set)
		if err != nil {
			return fmt.Errorf("building rollback plan: %w", err)
		}

		if !rollbackExecute {
			fmt.Fprint(cmd.OutOrStdout(), plan.Script())
			return nil
		}

		if !rollbackConfirm {
			fmt.Fprintln(cmd.OutOrStdout(), "Rollback requires --confirm to proceed.")
			fmt.Fprintln(cmd.OutOrStdout(), "This will rename database objects back to their original names.")
			return nil
		}

		cfg := loadConfig()
		if cfg.Database.DSN == "" {
			return fmt.Errorf("no database DSN; set database.dsn in the config")
		}

		if err := lock.Acquire(""); err != nil {
			return err
		}
		defer lock.Release("")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		conn, err := db.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer conn.Close()

		result, err := plan.Execute(ctx, conn)
		if err != nil {
			return fmt.Errorf("rollback: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Rolled back %d rename(s).\n", result.Executed)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "Warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rollbackCmd.Flags().StringVar(&rollbackChanges, "changes", "changes.yaml", "change set file the migration was generated from")
	rollbackCmd.Flags().BoolVar(&rollbackExecute, "execute", false, "apply the rollback instead of printing it")
	rollbackCmd.Flags().BoolVar(&rollbackConfirm, "confirm", false, "confirm execution against the database")
	rootCmd.AddCommand(rollbackCmd)
}
