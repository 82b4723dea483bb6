package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/bri-statement-converter/internal/batch"
	"github.com/insightdelivered/bri-statement-converter/internal/extractor"
	"github.com/insightdelivered/bri-statement-converter/internal/models"
	"github.com/insightdelivered/bri-statement-converter/internal/parser"
	"github.com/insightdelivered/bri-statement-converter/internal/writer"
)

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Convert statement PDFs to Excel or CSV",
	Long: `Convert reads each PDF given, or every *.pdf directly inside each folder
given (the current folder by default), and writes <name>.xlsx next to it or
into --output-dir.

Every document is reported as converted, empty (no transactions found) or
failed. A failed document never stops the others; the exit status is
non-zero only when at least one document failed.`,
	Example: `  bri-convert convert
  bri-convert convert statements/ --workers 4
  bri-convert convert "Rekening Koran Okt.pdf" --format csv -o out/`,
	RunE: runConvert,
}

func init() {
	ext := extractor.DefaultOptions()

	f := convertCmd.Flags()
	f.IntP("workers", "w", 1, "documents converted concurrently")
	f.String("format", "xlsx", "output format: xlsx or csv")
	f.StringP("output-dir", "o", "", "write outputs here instead of beside each PDF")
	f.String("amount-format", writer.DefaultAmountFormat, "number format of the Debet, Kredit and Saldo columns")
	f.Bool("debug", false, "log how every line of every document was classified")
	f.Float64("x-tolerance", ext.XTolerance, "gap in points above which two text runs are separate words")
	f.Bool("pdftotext", ext.PdftotextFallback, "fall back to pdftotext for pages the PDF library cannot read")

	viper.BindPFlag("workers", f.Lookup("workers"))
	viper.BindPFlag("output.format", f.Lookup("format"))
	viper.BindPFlag("output.dir", f.Lookup("output-dir"))
	viper.BindPFlag("output.amount_format", f.Lookup("amount-format"))
	viper.BindPFlag("output.debug", f.Lookup("debug"))
	viper.BindPFlag("extract.x_tolerance", f.Lookup("x-tolerance"))
	viper.BindPFlag("extract.pdftotext_fallback", f.Lookup("pdftotext"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := batch.CollectInputs(args, ".pdf")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no PDF files found", "paths", args)
		return nil
	}

	p, err := parser.New(models.Layout(appConfig.Layout), parser.Options{Trace: appConfig.Output.Debug})
	if err != nil {
		return err
	}
	w, err := writer.New(appConfig.Output.Format, writer.Options{
		AmountFormat: appConfig.Output.AmountFormat,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	if dir := appConfig.Output.Dir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output folder: %w", err)
		}
	}

	proc := &batch.Processor{
		Open:      openPDF(&extractor.PDF{Options: appConfig.ExtractorOptions()}),
		Parser:    p,
		Writer:    w,
		OutputDir: appConfig.Output.Dir,
		Workers:   appConfig.Workers,
		Logger:    logger,
	}
	results, sum := proc.Run(cmd.Context(), files)

	out := cmd.OutOrStdout()
	for _, r := range results {
		switch r.Status {
		case models.StatusConverted:
			fmt.Fprintf(out, "converted  %s -> %s (%d transactions)\n", r.Path, r.Output, r.Records)
		case models.StatusEmpty:
			fmt.Fprintf(out, "empty      %s: %v\n", r.Path, r.Err)
		default:
			fmt.Fprintf(out, "failed     %s: %v\n", r.Path, r.Err)
		}
	}
	fmt.Fprintf(out, "\n%d converted, %d empty, %d failed\n", sum.Converted, sum.Empty, sum.Failed)

	if sum.HasFailures() {
		return fmt.Errorf("%d of %d documents failed", sum.Failed, sum.Total())
	}
	return nil
}
