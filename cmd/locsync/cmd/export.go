package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redshield/locsync/pkg/export"
)

var (
	exportFlagFormat string
	exportFlagOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export corrected location data",
	Long: `Export writes the corrected final values for every identifier with at
least one reviewer deviation, backfilled from the facility system of
record for anything not overridden.`,
	Example: `  locsync export --output corrected.csv
  locsync export --format xlsx --output corrected.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlagFormat, "format", "f", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "output file (default: stdout for csv)")
}

func runExport(cmd *cobra.Command, _ []string) error {
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

	rows := export.Rows(result)

	switch strings.ToLower(exportFlagFormat) {
	case "csv":
		if exportFlagOutput == "" {
			return export.WriteCSV(os.Stdout, rows)
		}
		f, err := os.Create(exportFlagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.WriteCSV(f, rows); err != nil {
			return err
		}
	case "xlsx":
		if exportFlagOutput == "" {
			return fmt.Errorf("--output is required for xlsx")
		}
		if err := export.WriteXLSX(rows, exportFlagOutput); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q (want csv or xlsx)", exportFlagFormat)
	}

	if exportFlagOutput != "" {
		fmt.Printf("Exported %d rows to %s\n", len(rows), exportFlagOutput)
	}
	return nil
}
