package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/pipeline"
	"github.com/pgident/pgident/internal/report"
	"github.com/pgident/pgident/internal/schema"
)

var (
	validateSchema  string
	validateFormat  string
	validateSuggest bool
	validateStrict  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check schema identifiers against the PostgreSQL length limit",
	Long: `Walk the declarative schema, predict every table, column, and enum type
name PostgreSQL will create, and report identifiers that exceed or approach
the 63-character limit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		schemaPath := validateSchema
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
		if errs := project.Validate(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "schema: %v\n", e)
			}
			return fmt.Errorf("schema has %d structural error(s)", len(errs))
		}

		formatName := validateFormat
		if formatName == "" {
			formatName = cfg.Output.Format
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		p := pipeline.New(pipeline.Options{
			HardLimit:      cfg.Analysis.HardLimit,
			SoftThreshold:  cfg.Analysis.SoftThreshold,
			MaxDepth:       cfg.Analysis.MaxDepth,
			Suggest:        validateSuggest || cfg.Analysis.Suggest,
			FailOnWarnings: validateStrict,
		})
		rep := p.Run(project)

		out, err := rep.Render(format)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)

		if !rep.Summary.Passed {
			return fmt.Errorf("%d error(s), %d warning(s)", rep.Summary.Errors, rep.Summary.Warnings)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "schema file to analyze")
	validateCmd.Flags().StringVar(&validateFormat, "format", "", "report format (text, json, markdown, html)")
	validateCmd.Flags().BoolVar(&validateSuggest, "suggest", false, "include rename suggestions in the report")
	validateCmd.Flags().BoolVar(&validateStrict, "fail-on-warnings", false, "treat warnings as failures")
	rootCmd.AddCommand(validateCmd)
}
