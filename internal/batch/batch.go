// Package batch converts statement documents one by one or as a folder,
// isolating failures so one bad document never stops the rest.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
	"github.com/insightdelivered/bri-statement-converter/internal/parser"
	"github.com/insightdelivered/bri-statement-converter/internal/writer"
)

// ErrNoData marks a document that was read successfully but held no transactions.
var ErrNoData = errors.New("no data extracted")

// Source is an open document.
type Source interface {
	parser.PageSource
	io.Closer
}

// OpenFunc opens the document at path for extraction.
type OpenFunc func(path string) (Source, error)

// Result is the outcome of one document.
type Result struct {
	Path    string
	Output  string
	Status  models.DocumentStatus
	Records int
	Dropped int
	Err     error
}

// Summary counts document outcomes in a batch.
type Summary struct {
	Converted int
	Empty     int
	Failed    int
}

// Total returns the number of documents processed.
func (s Summary) Total() int {
	return s.Converted + s.Empty + s.Failed
}

// HasFailures reports whether any document failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Processor runs documents through extraction, parsing and serialization.
type Processor struct {
	Open   OpenFunc
	Parser parser.Parser
	Writer writer.Writer
	// OutputDir receives output files; empty writes next to each input.
	OutputDir string
	// Workers bounds how many documents are processed at once.
	Workers int
	Logger  *slog.Logger
}

// OutputPath returns where the converted form of input is written.
func (p *Processor) OutputPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + p.Writer.Ext()
	if p.OutputDir != "" {
		return filepath.Join(p.OutputDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}

// ProcessFile converts a single document. Every failure, including a panic
// inside a collaborator, is captured in the result rather than returned.
func (p *Processor) ProcessFile(ctx context.Context, path string) (res Result) {
	res = Result{Path: path}
	defer func() {
		if rec := recover(); rec != nil {
			res.Status = models.StatusFailed
			res.Err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(res, err)
	}

	info, err := p.parse(path)
	if err != nil {
		return failed(res, err)
	}
	res.Records = len(info.Transactions)
	res.Dropped = info.Dropped

	for _, dl := range info.DebugLines {
		p.logger().Debug("line", "file", path, "page", dl.Page, "line", dl.LineNum, "result", dl.Result, "text", dl.Text)
	}

	if len(info.Transactions) == 0 {
		res.Status = models.StatusEmpty
		res.Err = ErrNoData
		return res
	}

	out := p.OutputPath(path)
	if err := writer.WriteToFile(p.Writer, out, info); err != nil {
		return failed(res, err)
	}
	res.Output = out
	res.Status = models.StatusConverted
	return res
}

func (p *Processor) parse(path string) (*models.StatementInfo, error) {
	src, err := p.Open(path)
	if err != nil {
		return nil, fmt.Errorf("PDF extraction failed: %w", err)
	}
	defer src.Close()

	info, err := p.Parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	return info, nil
}

func failed(res Result, err error) Result {
	res.Status = models.StatusFailed
	res.Err = err
	return res
}

// Run processes every path, up to Workers at a time, and returns the
// results in input order with a summary. Each outcome is logged as it
// completes.
func (p *Processor) Run(ctx context.Context, paths []string) ([]Result, Summary) {
	logger := p.logger().With("run_id", uuid.NewString())
	logger.Info("batch started", "documents", len(paths), "workers", p.workers())

	results := make([]Result, len(paths))
	var g errgroup.Group
	g.SetLimit(p.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = p.ProcessFile(ctx, path)
			logResult(logger, results[i])
			return nil
		})
	}
	g.Wait()

	var sum Summary
	for _, r := range results {
		switch r.Status {
		case models.StatusConverted:
			sum.Converted++
		case models.StatusEmpty:
			sum.Empty++
		default:
			sum.Failed++
		}
	}
	logger.Info("batch finished", "converted", sum.Converted, "empty", sum.Empty, "failed", sum.Failed)
	return results, sum
}

func logResult(logger *slog.Logger, r Result) {
	attrs := []any{"file", r.Path, "status", r.Status, "records", r.Records, "dropped", r.Dropped}
	switch r.Status {
	case models.StatusConverted:
		logger.Info("document converted", append(attrs, "output", r.Output)...)
	case models.StatusEmpty:
		logger.Warn("no data extracted", attrs...)
	default:
		logger.Error("document failed", append(attrs, "error", r.Err)...)
	}
}

func (p *Processor) workers() int {
	if p.Workers < 1 {
		return 1
	}
	return p.Workers
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// CollectInputs expands args into the files to convert. Directories are
// scanned (not recursively) for files with extension ext, matched without
// regard to case; files are taken as given.
func CollectInputs(args []string, ext string) ([]string, error) {
	var files []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input not found: %w", err)
		}
		if !fi.IsDir() {
			files = append(files, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading folder %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
