package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Bulk-import historical tickets from a CSV export",
	Long: `Imports pre-summarised tickets from a CSV export. Rows are embedded
in batches and uploaded directly; no change detection or summarisation
is performed. Intended for the one-time initial load.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return configureServices()
	},
	RunE: runImportCmd,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	cmd.Printf("Importing %s...\n", args[0])
	summary, err := importService.ImportCSV(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d rows, uploaded %d documents.\n", summary.Rows, summary.Uploaded)
	return nil
}
