package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/bri-statement-converter/internal/batch"
	"github.com/insightdelivered/bri-statement-converter/internal/csvconv"
)

var csv2xlsxCmd = &cobra.Command{
	Use:   "csv2xlsx [paths...]",
	Short: "Convert BRI transaction CSV exports to formatted Excel",
	Long: `csv2xlsx turns each CSV given, or every *.csv directly inside each folder
given, into <name>.xlsx beside it. NOREK stays text, TGL_EFEKTIF is written
as an Indonesian date (07 Oktober 2025), JAM_TRAN as HH:MM:SS, and columns
H to K as numbers with two decimals.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}
		files, err := batch.CollectInputs(args, ".csv")
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Warn("no CSV files found", "paths", args)
			return nil
		}

		converted, failed := csvconv.ConvertAll(files, logger)
		fmt.Fprintf(cmd.OutOrStdout(), "%d converted, %d failed\n", converted, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(files))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(csv2xlsxCmd)
}
