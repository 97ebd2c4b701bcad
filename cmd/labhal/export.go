package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meshintel/labhal/internal/export"
	"github.com/meshintel/labhal/internal/pipeline"
	"github.com/meshintel/labhal/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render reconciled results as CSV and repository-import XML",
	Long: `Export reads a saved reconciliation run and renders it: a CSV table
of every publication with its match status, open-access signals, and
recommended action, plus optionally a ZIP of per-publication TEI XML
files ready for repository import.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("in", "results.yaml", "reconciled results file")
	exportCmd.Flags().String("output-dir", "out", "directory for exported files")
	exportCmd.Flags().Bool("link-formulas", false, "embed spreadsheet HYPERLINK formulas for DOI and repository links")
	exportCmd.Flags().Bool("zip", false, "also write a ZIP of per-publication TEI XML files")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	outputDir := stringSetting(cmd, "output-dir", "export.output_dir")
	linkFormulas := boolSetting(cmd, "link-formulas", "export.link_formulas")
	withZip, _ := cmd.Flags().GetBool("zip")

	rf, err := pipeline.ReadResultsFile(in)
	if err != nil {
		return err
	}
	if len(rf.Rows) == 0 {
		return fmt.Errorf("results file %s contains no rows", in)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	cfg := types.ExportConfig{OutputDir: outputDir, LinkFormulas: linkFormulas}
	base := exportBaseName(rf.Run)

	csvPath := filepath.Join(outputDir, base+".csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", csvPath, err)
	}
	if err := export.WriteCSV(csvFile, rf.Rows, cfg); err != nil {
		csvFile.Close()
		return err
	}
	if err := csvFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", csvPath, err)
	}
	fmt.Printf("wrote %s (%d rows)\n", csvPath, len(rf.Rows))

	if withZip {
		zipPath := filepath.Join(outputDir, base+".zip")
		zipFile, err := os.Create(zipPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", zipPath, err)
		}
		if err := export.WriteZIP(zipFile, rf.Rows, os.Stderr); err != nil {
			zipFile.Close()
			return err
		}
		if err := zipFile.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", zipPath, err)
		}
		fmt.Printf("wrote %s\n", zipPath)
	}
	return nil
}

// exportBaseName derives the output filename stem from the run
// parameters, e.g. "labhal_MIP_2020-2024".
func exportBaseName(run pipeline.RunParams) string {
	coll := run.Collection
	if coll == "" {
		coll = "HAL_global"
	}
	return fmt.Sprintf("labhal_%s_%d-%d", coll, run.StartYear, run.EndYear)
}
