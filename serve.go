package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightdelivered/bri-statement-converter/internal/api"
	"github.com/insightdelivered/bri-statement-converter/internal/extractor"
	"github.com/insightdelivered/bri-statement-converter/internal/models"
	"github.com/insightdelivered/bri-statement-converter/internal/writer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion API over HTTP",
	Long: `Serve starts the HTTP API:

  GET  /api/health   liveness and version
  POST /api/convert  multipart upload of a statement PDF ("file") or of
                     client-extracted page text ("extractedText"); answers
                     JSON, or an xlsx/csv download when format is set`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := &api.Handler{
			Open:   openPDF(&extractor.PDF{Options: appConfig.ExtractorOptions()}),
			Layout: models.Layout(appConfig.Layout),
			WriterOptions: writer.Options{
				AmountFormat: appConfig.Output.AmountFormat,
				Logger:       logger,
			},
			Version: version,
			Logger:  logger,
		}
		app := api.NewApp(h, appConfig.Server.BodyLimitMB)

		go func() {
			<-cmd.Context().Done()
			logger.Info("shutting down")
			app.Shutdown()
		}()

		logger.Info("listening", "addr", appConfig.Server.Addr)
		return app.Listen(appConfig.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
