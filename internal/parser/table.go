package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/insightdelivered/bri-statement-converter/internal/models"
)

// PageSource hands out the text lines of a document one page at a time.
// Pages are numbered from 1. A page with no text returns no lines and no error.
type PageSource interface {
	NumPage() int
	PageLines(page int) ([]string, error)
}

// TextPages is a PageSource over text that has already been extracted,
// one string per page.
type TextPages []string

func (p TextPages) NumPage() int { return len(p) }

func (p TextPages) PageLines(page int) ([]string, error) {
	if page < 1 || page > len(p) {
		return nil, fmt.Errorf("page %d out of range (1-%d)", page, len(p))
	}
	if strings.TrimSpace(p[page-1]) == "" {
		return nil, nil
	}
	return strings.Split(p[page-1], "\n"), nil
}

// TableState is the table-recovery state of a single document. The zero
// value is the state at the start of a document: outside any table, no records.
type TableState struct {
	Inside  bool
	Records []models.Transaction
	Dropped int
}

// Step feeds one trimmed, non-empty line through the classifier and returns
// the next state with the line's classification. A record line that cannot
// be parsed leaves the records unchanged, bumps Dropped and returns the
// parse error alongside NewRecord. The receiver is never modified, so an
// earlier state stays valid after later steps.
func (s TableState) Step(line string) (TableState, LineKind, error) {
	kind := Classify(s.Inside, len(s.Records) > 0, line)

	switch kind {
	case TableStart:
		s.Inside = true
	case TableEnd:
		s.Inside = false
	case NewRecord:
		txn, err := ParseTransaction(Tokenize(line))
		if err != nil {
			s.Dropped++
			return s, kind, err
		}
		s.Records = append(s.Records, txn)
	case Continuation:
		// The previous state shares the backing array; edit a copy.
		records := slices.Clone(s.Records)
		records[len(records)-1].Description += " " + line
		s.Records = records
	}

	return s, kind, nil
}

// ExtractTable walks every line of every page in order, carrying the table
// state across page breaks. Errors from the page source abort the document;
// line-level parse failures never do. Amounts are left unnormalized.
func ExtractTable(src PageSource, trace bool) (*models.StatementInfo, error) {
	info := &models.StatementInfo{Pages: src.NumPage()}

	var state TableState
	for page := 1; page <= src.NumPage(); page++ {
		lines, err := src.PageLines(page)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", page, err)
		}

		for i, raw := range lines {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}

			var kind LineKind
			var stepErr error
			state, kind, stepErr = state.Step(line)

			if trace {
				result := kind.String()
				if stepErr != nil {
					result = "dropped"
				}
				info.DebugLines = append(info.DebugLines, models.DebugLine{
					Page:    page,
					LineNum: i + 1,
					Text:    line,
					Result:  result,
				})
			}
		}
	}

	info.Transactions = state.Records
	info.Dropped = state.Dropped
	return info, nil
}
