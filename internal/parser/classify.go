package parser

import (
	"regexp"
	"strings"
)

// LineKind is the classification of a single statement line.
type LineKind int

const (
	Noise LineKind = iota
	TableStart
	TableEnd
	NewRecord
	Continuation
)

func (k LineKind) String() string {
	switch k {
	case TableStart:
		return "table_start"
	case TableEnd:
		return "table_end"
	case NewRecord:
		return "record"
	case Continuation:
		return "continuation"
	default:
		return "noise"
	}
}

// recordDatePattern matches the dd/mm/yy token that opens every transaction row.
var recordDatePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}`)

// Column header phrases that open the transaction table, in Indonesian and English.
var tableStartPhrases = []string{
	"Tanggal Transaksi",
	"Transaction Date",
}

// Summary phrases printed right after the last transaction row.
var tableEndPhrases = []string{
	"Saldo Awal",
	"Opening Balance",
	"Total Transaksi",
}

// Classify decides what a trimmed line means given whether the table is
// currently open and whether a record exists to continue into. Boundary
// phrases are checked first so a header or summary line that happens to
// start with a date never becomes a record.
func Classify(inside, haveRecord bool, line string) LineKind {
	if containsAnyPhrase(line, tableStartPhrases) {
		return TableStart
	}
	if containsAnyPhrase(line, tableEndPhrases) {
		return TableEnd
	}
	if !inside {
		return Noise
	}
	if startsWithRecordDate(line) {
		return NewRecord
	}
	if haveRecord {
		return Continuation
	}
	return Noise
}

func startsWithRecordDate(line string) bool {
	return recordDatePattern.MatchString(line)
}

// containsAnyPhrase is case-sensitive; the statement prints its headers in
// a fixed casing and lowercase matches show up inside descriptions.
func containsAnyPhrase(line string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}
