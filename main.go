// Command bri-convert extracts the transaction table from BRI account
// statement PDFs into spreadsheets.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/bri-statement-converter/internal/batch"
	"github.com/insightdelivered/bri-statement-converter/internal/config"
	"github.com/insightdelivered/bri-statement-converter/internal/extractor"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	appConfig *config.Config
	logger    *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bri-convert",
	Short: "BRI bank statement PDF to Excel converter",
	Long: `bri-convert recovers the transaction table of BRI / BRImo account statement
PDFs (date, time, description, teller, debit, credit, balance) and writes it
as an Excel workbook or CSV file.

Settings come from flags, BRI_CONVERT_* environment variables, or a
bri-convert.yaml config file, in that order of precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = config.NewLogger(cfg.Log, os.Stderr)
		slog.SetDefault(logger)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./bri-convert.yaml or ~/.config/bri-convert/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("layout", "bri", "statement layout")

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("layout", pf.Lookup("layout"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bri-convert")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bri-convert"))
		}
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
		}
	}
}

// openPDF adapts the PDF extractor to the batch processor.
func openPDF(ext *extractor.PDF) batch.OpenFunc {
	return func(path string) (batch.Source, error) {
		doc, err := ext.Open(path)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
