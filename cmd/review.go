package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/change"
	"github.com/pgident/pgident/internal/pipeline"
	"github.com/pgident/pgident/internal/schema"
	"github.com/pgident/pgident/internal/wizard"
)

var (
	reviewSchema   string
	reviewOut      string
	reviewWarnings bool
	reviewDerive   bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively choose replacement names for flagged identifiers",
	Long: `Walk through each identifier violation, pick a suggested replacement or
type a custom one, and save the decisions as a change set for
` + "`pgident generate`" + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		schemaPath := reviewSchema
		if schemaPath == "" {
			schemaPath = cfg.Schema.Path
		}
		if schemaPath == "" {
			return fmt.Errorf("no schema file; pass --schema or set schema.path in the config")
		}

		project, err := schema.LoadYAML(schemaPath)
		if err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}

		p := pipeline.New(pipeline.Options{
			HardLimit:     cfg.Analysis.HardLimit,
			SoftThreshold: cfg.Analysis.SoftThreshold,
			MaxDepth:      cfg.Analysis.MaxDepth,
			Suggest:       true,
		})
		rep := p.Run(project)

		violations := rep.Violations
		if !reviewWarnings {
			violations = nil
			for _, v := range rep.Violations {
				if v.Severity == analyze.SeverityError {
					violations = append(violations, v)
				}
			}
		}
		if len(violations) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to review; all identifiers fit.")
			return nil
		}

		items := wizard.BuildItems(violations, rep.Suggestions)
		set, err := wizard.Run(items, cfg.Analysis.HardLimit, cfg.Database.Schema)
		if err != nil {
			return err
		}

		if len(set.Changes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No renames accepted; nothing saved.")
			return nil
		}

		if reviewDerive {
			var derived []change.Change
			for _, c := range set.Changes {
				derived = append(derived, change.Derived(c)...)
			}
			set.Changes = append(set.Changes, derived...)
		}

		if err := set.Save(reviewOut); err != nil {
			return fmt.Errorf("saving change set: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rename(s) to %s\n", len(set.Changes), reviewOut)
		fmt.Fprintln(cmd.OutOrStdout(), "Run `pgident generate` to produce the migration.")
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewSchema, "schema", "", "schema file to analyze")
	reviewCmd.Flags().StringVar(&reviewOut, "out", "changes.yaml", "change set output file")
	reviewCmd.Flags().BoolVar(&reviewWarnings, "include-warnings", false, "review warnings as well as errors")
	reviewCmd.Flags().BoolVar(&reviewDerive, "derive-constraints", false, "also rename conventional pkey, parent fk, and parent index for renamed tables")
	rootCmd.AddCommand(reviewCmd)
}
