package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/redshield/locsync/pkg/reconcile"
)

var (
	reconcileFlagReport string
	reconcileFlagDiffs  bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Load all sources and report differences",
	Long: `Reconcile loads the facility and web-CMS exports, joins them by
resolved identity, applies stored corrections, and prints a run summary.`,
	Example: `  locsync reconcile --source-root ./exports
  locsync reconcile --source-root ./exports --diffs
  locsync reconcile --report run.yaml`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileFlagReport, "report", "", "write the run summary as YAML to this file")
	reconcileCmd.Flags().BoolVar(&reconcileFlagDiffs, "diffs", false, "list every open difference")
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := buildClient(cfg, st)
	if err != nil {
		return err
	}

	result, err := client.Run(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(result)

	if reconcileFlagDiffs {
		printDifferences(result)
	}

	if reconcileFlagReport != "" {
		if err := writeReport(reconcileFlagReport, result); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Report written to %s\n", reconcileFlagReport)
	}

	return nil
}

func printSummary(result *reconcile.Result) {
	s := result.Summary
	fmt.Printf("Rows: %d (matched %d, source-only %d, web-only %d)\n",
		len(result.Rows), s.Matched, s.SourceOnly, s.WebOnly)
	fmt.Printf("Differences: %d (%d synthetic)\n", s.Differences, s.Synthetic)

	if len(s.SuppressionReasons) > 0 {
		fmt.Println("Suppression reasons:")
		for reason, count := range s.SuppressionReasons {
			fmt.Printf("  %s: %d\n", reason, count)
		}
	}
}

func printDifferences(result *reconcile.Result) {
	for _, d := range result.Differences {
		marker := ""
		if d.Synthetic {
			marker = " (synthetic)"
		}
		fmt.Printf("%s %s: %q vs %q -> %s%s\n",
			d.ID, d.Field, d.SourceValue, d.WebValue, d.Choice, marker)
	}
}

// report is the YAML run-report shape.
type report struct {
	Summary     reconcile.Summary `yaml:"summary"`
	Differences []reportDiff      `yaml:"differences"`
}

type reportDiff struct {
	ID          string `yaml:"gdos_id"`
	Field       string `yaml:"field"`
	SourceValue string `yaml:"gdos_value"`
	WebValue    string `yaml:"zesty_value"`
	Choice      string `yaml:"correct"`
	FinalValue  string `yaml:"final_value"`
	Synthetic   bool   `yaml:"synthetic,omitempty"`
	Territory   string `yaml:"territory,omitempty"`
}

func writeReport(path string, result *reconcile.Result) error {
	r := report{Summary: result.Summary}
	for _, d := range result.Differences {
		r.Differences = append(r.Differences, reportDiff{
			ID:          d.ID,
			Field:       string(d.Field),
			SourceValue: d.SourceValue,
			WebValue:    d.WebValue,
			Choice:      string(d.Choice),
			FinalValue:  d.FinalValue,
			Synthetic:   d.Synthetic,
			Territory:   d.Territory,
		})
	}

	raw, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
