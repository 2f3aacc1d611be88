package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgident/pgident/internal/analyze"
	"github.com/pgident/pgident/internal/schema"
)

var (
	estimateSchema string
	estimateTop    int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [field.path]",
	Short: "Show predicted identifiers and their lengths",
	Long: `Print the PostgreSQL identifiers the schema will produce, longest first.
With a field path argument, only identifiers under that path are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		schemaPath := estimateSchema
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

		// A soft threshold of 1 turns the analyzer into an inventory:
		// every identifier comes back, not just the problematic ones.
		a := analyze.NewWithLimits(cfg.Analysis.HardLimit, 1)
		if cfg.Analysis.MaxDepth > 0 {
			a.MaxDepth = cfg.Analysis.MaxDepth
		}
		res := a.AnalyzeProject(project)

		entries := res.Violations
		if len(args) == 1 {
			prefix := args[0]
			var filtered []analyze.Violation
			for _, v := range entries {
				if v.FieldPath == prefix || strings.HasPrefix(v.FieldPath, prefix+".") {
					filtered = append(filtered, v)
				}
			}
			if len(filtered) == 0 {
				return fmt.Errorf("no field matches path %q", prefix)
			}
			entries = filtered
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Length > entries[j].Length
		})
		if estimateTop > 0 && len(entries) > estimateTop {
			entries = entries[:estimateTop]
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-6s %-8s %-40s %s\n", "LENGTH", "TYPE", "FIELD PATH", "IDENTIFIER")
		for _, v := range entries {
			marker := "  "
			switch {
			case v.Length > a.HardLimit:
				marker = " !"
			case v.Length >= a.HardLimit*8/10:
				marker = " ~"
			}
			fmt.Fprintf(out, "%4d%s %-8s %-40s %s\n", v.Length, marker, v.ObjectType, v.FieldPath, v.Identifier)
		}
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateSchema, "schema", "", "schema file to analyze")
	estimateCmd.Flags().IntVar(&estimateTop, "top", 25, "show only the N longest identifiers (0 for all)")
	rootCmd.AddCommand(estimateCmd)
}
