package extractor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrNoPages is returned for a PDF that opens but reports zero pages.
var ErrNoPages = errors.New("PDF has no pages")

// Options control how page text is rebuilt from positioned text runs.
type Options struct {
	// XTolerance is the horizontal gap, in points, above which two adjacent
	// text runs on the same row are treated as separate words.
	XTolerance float64
	// PdftotextFallback re-extracts a page with `pdftotext -layout` when the
	// library returns nothing readable for it.
	PdftotextFallback bool
}

// DefaultOptions mirrors the layout settings the statements were tuned on.
func DefaultOptions() Options {
	return Options{XTolerance: 2, PdftotextFallback: true}
}

// PDF opens statement PDFs for page-by-page text extraction.
type PDF struct {
	Options Options
}

// Document is an open PDF. Pages are extracted lazily, one PageLines call
// per page, so a table spanning pages is read in document order.
type Document struct {
	path     string
	opts     Options
	file     *os.File
	reader   *pdf.Reader
	numPages int
}

// Open opens the PDF at path. When the library cannot read the file at all
// and the pdftotext fallback is enabled, the document is served entirely by
// pdftotext.
func (e *PDF) Open(path string) (*Document, error) {
	doc := &Document{path: path, opts: e.Options}

	f, r, err := openWithLibrary(path)
	if err == nil {
		doc.file = f
		doc.reader = r
		doc.numPages = r.NumPage()
	} else if e.Options.PdftotextFallback && popplerAvailable() {
		doc.numPages = popplerPageCount(path)
	} else {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	if doc.numPages == 0 {
		doc.Close()
		if err != nil {
			return nil, errors.Join(ErrNoPages, fmt.Errorf("opening PDF: %w", err))
		}
		return nil, ErrNoPages
	}
	return doc, nil
}

func openWithLibrary(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed: %v", rec)
		}
	}()
	f, r, err = pdf.Open(path)
	if err != nil && f != nil {
		f.Close()
		f = nil
	}
	return f, r, err
}

// NumPage returns the number of pages in the document.
func (d *Document) NumPage() int {
	return d.numPages
}

// PageLines returns the text rows of page n (1-based), top to bottom.
func (d *Document) PageLines(n int) ([]string, error) {
	if n < 1 || n > d.numPages {
		return nil, fmt.Errorf("page %d out of range (1-%d)", n, d.numPages)
	}

	var lines []string
	var libErr error
	if d.reader != nil {
		lines, libErr = d.libraryLines(n)
		if libErr == nil && isReadableText(lines) {
			return lines, nil
		}
	}

	if d.opts.PdftotextFallback && popplerAvailable() {
		popplerLines, err := pdftotextPage(d.path, n)
		if err == nil && (d.reader == nil || isReadableText(popplerLines)) {
			return popplerLines, nil
		}
		if d.reader == nil {
			return nil, err
		}
	}

	if libErr != nil {
		return nil, libErr
	}
	// Whatever the library produced, even if sparse; an empty page is not an error.
	return lines, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// libraryLines rebuilds the rows of one page from ledongthuc/pdf text runs.
func (d *Document) libraryLines(n int) (lines []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("PDF library crashed on page %d: %v", n, rec)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("reading rows of page %d: %w", n, err)
	}

	for _, row := range rows {
		runs := make([]textRun, 0, len(row.Content))
		for _, t := range row.Content {
			runs = append(runs, textRun{x: t.X, w: t.W, s: t.S})
		}
		if line := joinRuns(runs, d.opts.XTolerance); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

type textRun struct {
	x, w float64
	s    string
}

// joinRuns orders the runs of one row left to right and glues them into a
// line, inserting a space wherever the gap to the previous run exceeds tol.
func joinRuns(runs []textRun, tol float64) string {
	sort.SliceStable(runs, func(a, b int) bool {
		return runs[a].x < runs[b].x
	})

	var sb strings.Builder
	var prevEnd float64
	for i, r := range runs {
		if r.s == "" {
			continue
		}
		if i > 0 && sb.Len() > 0 && r.x-prevEnd > tol {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.s)
		prevEnd = r.x + r.w
	}
	return strings.TrimSpace(sb.String())
}

// textQuality returns the ratio of basic readable characters to all
// characters. Identity-encoded fonts decode to runs of symbols and accented
// letters, which pull the ratio down.
func textQuality(lines []string) float64 {
	total := 0
	readable := 0
	for _, line := range lines {
		for _, r := range line {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// isReadableText reports whether a page produced text worth parsing.
func isReadableText(lines []string) bool {
	return len(lines) > 0 && textQuality(lines) > 0.6
}

// Overridden in tests.
var (
	popplerAvailable = pdftotextAvailable
	popplerPageCount = pdfinfoPageCount
)

func pdftotextAvailable() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}

// pdftotextPage extracts a single page with poppler's layout mode.
func pdftotextPage(path string, n int) ([]string, error) {
	pageStr := strconv.Itoa(n)
	out, err := exec.Command("pdftotext", "-layout", "-f", pageStr, "-l", pageStr, path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext page %d: %w", n, err)
	}
	return splitLines(string(out)), nil
}

// pdfinfoPageCount returns the page count reported by pdfinfo, or 0.
func pdfinfoPageCount(path string) int {
	out, err := exec.Command("pdfinfo", path).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil {
				return n
			}
		}
	}
	return 0
}

// splitLines splits text into lines, dropping form feeds and blank lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\f", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, " \r"))
		}
	}
	return lines
}
