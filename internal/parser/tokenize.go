package parser

import "strings"

// Tokenize splits a trimmed statement line on runs of whitespace. An empty
// line yields no tokens and should be skipped by the caller.
func Tokenize(line string) []string {
	return strings.Fields(line)
}
