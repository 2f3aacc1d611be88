package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/db"
	"github.com/pgident/pgident/internal/integrity"
)

var (
	verifyPhase   string
	verifyChanges string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run integrity checks against the database",
	Long: `Run a batch of integrity checks against the live database. The pre phase
checks connectivity and captures a baseline; the post phase verifies table
counts, row estimates, and index validity after a migration; the
identifiers phase confirms every rename in a change set took effect.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.Database.DSN == "" {
			return fmt.Errorf("no database DSN; set database.dsn in the config")
		}

		var checks []integrity.Check
		switch verifyPhase {
		case "pre":
			checks = integrity.PreMigrationChecks(cfg.Database.Schema)
		case "post":
			checks = integrity.PostMigrationChecks(cfg.Database.Schema)
		case "identifiers":
			set, err := change.Load(verifyChanges)
			if err != nil {
				return fmt.Errorf("loading change set: %w", err)
			}
			checks = integrity.IdentifierChecks(set)
		default:
			return fmt.Errorf("unknown phase %q (want pre, post, or identifiers)", verifyPhase)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		conn, err := db.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer conn.Close()

		out := cmd.OutOrStdout()
		runner := &integrity.Runner{
			DB: conn,
			Callback: func(name string, passed bool) {
				status := "PASS"
				if !passed {
					status = "FAIL"
				}
				fmt.Fprintf(out, "  [%s] %s\n", status, name)
			},
		}

		fmt.Fprintf(out, "Running %s checks...\n", verifyPhase)
		rep := runner.Run(ctx, checks)

		fmt.Fprintf(out, "\n%d/%d passed in %s\n", rep.PassedCount, rep.Total,
			rep.CompletedAt.Sub(rep.StartedAt).Round(time.Millisecond))

		if !rep.Passed() {
			for _, f := range rep.CriticalFailures {
				fmt.Fprintf(out, "Critical: %s\n", f)
			}
			return fmt.Errorf("%d critical check(s) failed", len(rep.CriticalFailures))
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyPhase, "phase", "post", "check phase (pre, post, identifiers)")
	verifyCmd.Flags().StringVar(&verifyChanges, "changes", "changes.yaml", "change set for the identifiers phase")
	rootCmd.AddCommand(verifyCmd)
}
