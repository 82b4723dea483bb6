package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/bri-statement-converter/internal/batch"
	"github.com/insightdelivered/bri-statement-converter/internal/models"
	"github.com/insightdelivered/bri-statement-converter/internal/parser"
	"github.com/insightdelivered/bri-statement-converter/internal/writer"
)

// PageBreak separates pages in client-extracted text.
const PageBreak = "\n---PAGE_BREAK---\n"

// ConvertResponse is the JSON response from the /api/convert endpoint.
type ConvertResponse struct {
	Success      bool                  `json:"success"`
	Status       models.DocumentStatus `json:"status"`
	Error        string                `json:"error,omitempty"`
	ID           string                `json:"id,omitempty"`
	Count        int                   `json:"count"`
	Dropped      int                   `json:"dropped"`
	TotalDebit   decimal.Decimal       `json:"totalDebit"`
	TotalCredit  decimal.Decimal       `json:"totalCredit"`
	Transactions []models.Transaction  `json:"transactions"`
	DebugLines   []models.DebugLine    `json:"debugLines,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	// Open reads an uploaded PDF from the temp file it was saved to.
	Open   batch.OpenFunc
	Layout models.Layout
	// WriterOptions apply to xlsx and csv downloads.
	WriterOptions writer.Options
	Version       string
	Logger        *slog.Logger
}

// NewApp builds the fiber app serving h.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "bri-convert",
		BodyLimit: bodyLimitMB << 20,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.Register(app)
	return app
}

// Register mounts the API routes on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/convert", h.HandleConvert)
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

func (h *Handler) HandleConvert(c *fiber.Ctx) error {
	id := uuid.NewString()
	logger := h.logger().With("request_id", id)

	format := strings.ToLower(c.FormValue("format", "json"))
	var out writer.Writer
	if format != "json" {
		w, err := writer.New(format, h.WriterOptions)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		out = w
	}

	p, err := parser.New(h.Layout, parser.Options{Trace: format == "json"})
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	name := "statement"
	var info *models.StatementInfo
	if pages := splitPages(c.FormValue("extractedText")); len(pages) > 0 {
		info, err = p.Parse(pages)
	} else {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or 'extractedText'.")
		}
		if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
			return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
		}
		name = strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))

		tmp, terr := os.CreateTemp("", "statement-*.pdf")
		if terr != nil {
			return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		if err := c.SaveFile(fh, tmp.Name()); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
		}
		info, err = h.parseFile(p, tmp.Name())
	}
	if err != nil {
		logger.Error("conversion failed", "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ConvertResponse{
			Status:       models.StatusFailed,
			Error:        err.Error(),
			ID:           id,
			Transactions: []models.Transaction{},
		})
	}

	resp := summarize(id, info)
	if resp.Count == 0 {
		logger.Warn("no data extracted", "debug_lines", len(info.DebugLines))
		resp.Status = models.StatusEmpty
		resp.Error = batch.ErrNoData.Error()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	logger.Info("document converted", "records", resp.Count, "dropped", resp.Dropped, "format", format)

	if out == nil {
		return c.JSON(resp)
	}
	var buf bytes.Buffer
	if err := out.Write(&buf, info); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("%s generation failed: %v", format, err))
	}
	setAttachment(c, name+out.Ext())
	return c.Send(buf.Bytes())
}

// setAttachment names the download. The plain filename is an ASCII
// fallback; filename* carries the exact UTF-8 name.
func setAttachment(c *fiber.Ctx, filename string) {
	c.Type(strings.TrimPrefix(filepath.Ext(filename), "."))
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
		fallback, url.PathEscape(filename)))
}

func (h *Handler) parseFile(p parser.Parser, path string) (*models.StatementInfo, error) {
	if h.Open == nil {
		return nil, errors.New("PDF extraction is not configured")
	}
	src, err := h.Open(path)
	if err != nil {
		return nil, fmt.Errorf("PDF extraction failed: %w", err)
	}
	defer src.Close()

	info, err := p.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	return info, nil
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// splitPages splits client-extracted text into pages, skipping blank ones.
func splitPages(text string) parser.TextPages {
	var pages parser.TextPages
	for _, page := range strings.Split(text, PageBreak) {
		if strings.TrimSpace(page) != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

func summarize(id string, info *models.StatementInfo) ConvertResponse {
	// nil marshals to JSON null, not []
	txns := info.Transactions
	if txns == nil {
		txns = []models.Transaction{}
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, t := range txns {
		totalDebit = totalDebit.Add(t.Debit.Value)
		totalCredit = totalCredit.Add(t.Credit.Value)
	}

	return ConvertResponse{
		Success:      len(txns) > 0,
		Status:       models.StatusConverted,
		ID:           id,
		Count:        len(txns),
		Dropped:      info.Dropped,
		TotalDebit:   totalDebit,
		TotalCredit:  totalCredit,
		Transactions: txns,
		DebugLines:   info.DebugLines,
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Status:       models.StatusFailed,
		Error:        msg,
		Transactions: []models.Transaction{},
	})
}
