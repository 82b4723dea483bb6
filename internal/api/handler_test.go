package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/bri-statement-converter/internal/batch"
	"github.com/insightdelivered/bri-statement-converter/internal/models"
	"github.com/insightdelivered/bri-statement-converter/internal/parser"
)

const statementPage1 = `BANK RAKYAT INDONESIA
Tanggal Transaksi Uraian Transaksi Teller Debet Kredit Saldo
01/02/23 10:15:00 TRANSFER DARI BUDI 8888 0.00 1,500,000.00 2,500,000.00
SETORAN GAJI`

const statementPage2 = `02/02/23 ATM WITHDRAWAL 100,000.00 0.00 2,400,000.00
Saldo Awal 1,000,000.00`

type textSource struct {
	parser.TextPages
}

func (textSource) Close() error { return nil }

func setupTestApp(open batch.OpenFunc) *fiber.App {
	h := &Handler{Open: open, Layout: models.LayoutBRI, Version: "test"}
	return NewApp(h, 4)
}

func formRequest(t *testing.T, fields map[string]string, fileName string, fileBody []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileBody)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, body io.Reader) ConvertResponse {
	t.Helper()
	var resp ConvertResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, "fiber", result["engine"])
	assert.Equal(t, "test", result["version"])
}

func TestConvertEndpointRequiresInput(t *testing.T) {
	app := setupTestApp(nil)

	resp, err := app.Test(formRequest(t, nil, "", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeResponse(t, resp.Body)
	assert.False(t, body.Success)
	assert.Equal(t, models.StatusFailed, body.Status)
	assert.Contains(t, body.Error, "No file uploaded")
}

func TestConvertEndpointExtractedText(t *testing.T) {
	app := setupTestApp(nil)

	text := statementPage1 + PageBreak + statementPage2
	resp, err := app.Test(formRequest(t, map[string]string{"extractedText": text}, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeResponse(t, resp.Body)
	assert.True(t, body.Success)
	assert.Equal(t, models.StatusConverted, body.Status)
	assert.NotEmpty(t, body.ID)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "100000", body.TotalDebit.String())
	assert.Equal(t, "1500000", body.TotalCredit.String())

	require.Len(t, body.Transactions, 2)
	first := body.Transactions[0]
	assert.Equal(t, "01/02/23", first.Date)
	assert.Equal(t, "10:15:00", first.Time)
	assert.Equal(t, "TRANSFER DARI BUDI SETORAN GAJI", first.Description)
	assert.Equal(t, "8888", first.TellerID)
	assert.Equal(t, "ATM WITHDRAWAL", body.Transactions[1].Description)

	assert.NotEmpty(t, body.DebugLines)
}

func TestConvertEndpointEmpty(t *testing.T) {
	app := setupTestApp(nil)

	req := formRequest(t, map[string]string{"extractedText": "no table on this page"}, "", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeResponse(t, resp.Body)
	assert.False(t, body.Success)
	assert.Equal(t, models.StatusEmpty, body.Status)
	assert.Equal(t, "no data extracted", body.Error)
	assert.NotNil(t, body.Transactions)
}

func TestConvertEndpointUnknownFormat(t *testing.T) {
	app := setupTestApp(nil)

	req := formRequest(t, map[string]string{"extractedText": statementPage1, "format": "ods"}, "", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConvertEndpointRejectsNonPDF(t *testing.T) {
	app := setupTestApp(nil)

	resp, err := app.Test(formRequest(t, nil, "statement.txt", []byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeResponse(t, resp.Body).Error, "Only PDF")
}

func TestConvertEndpointUploadedPDF(t *testing.T) {
	var opened string
	open := func(path string) (batch.Source, error) {
		opened = path
		return textSource{parser.TextPages{statementPage1, statementPage2}}, nil
	}
	app := setupTestApp(open)

	req := formRequest(t, map[string]string{"format": "xlsx"}, "Rekening Februari.PDF", []byte("%PDF-1.4"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NotEmpty(t, opened)
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, "Rekening Februari.xlsx", params["filename"])
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=UTF-8''Rekening%20Februari.xlsx")
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Tanggal", rows[0][0])
}

func TestConvertEndpointExtractionFailure(t *testing.T) {
	open := func(string) (batch.Source, error) {
		return nil, errors.New("not a PDF")
	}
	app := setupTestApp(open)

	resp, err := app.Test(formRequest(t, nil, "broken.pdf", []byte("junk")))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeResponse(t, resp.Body)
	assert.Equal(t, models.StatusFailed, body.Status)
	assert.True(t, strings.HasPrefix(body.Error, "PDF extraction failed"))
}
