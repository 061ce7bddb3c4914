// Package statement turns line-oriented text renderings of financial
// documents (bank, card, payroll statements) into typed transaction records.
// The pipeline is: NormalizeLines -> Classifier -> Assembler -> []Record.
package statement

import (
	"bufio"
	"io"
	"strings"
)

// RawLine is a single normalized line of document text together with its
// original position. It is never mutated after creation.
type RawLine struct {
	Index int    // 0-based position in the original document
	Text  string // trimmed, internal whitespace collapsed
}

// IsEmpty reports whether the line carried no visible content.
func (l RawLine) IsEmpty() bool {
	return l.Text == ""
}

// NormalizeLines converts raw text lines into RawLines, trimming surrounding
// whitespace and collapsing internal runs of spaces and tabs. Empty lines are
// kept so positional indices stay aligned with the source document.
func NormalizeLines(lines []string) []RawLine {
	out := make([]RawLine, 0, len(lines))
	for i, line := range lines {
		out = append(out, RawLine{Index: i, Text: collapseWhitespace(line)})
	}
	return out
}

// ReadLines reads a whole text rendering and normalizes it line by line.
func ReadLines(r io.Reader) ([]RawLine, error) {
	var out []RawLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	i := 0
	for scanner.Scan() {
		out = append(out, RawLine{Index: i, Text: collapseWhitespace(scanner.Text())})
		i++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// collapseWhitespace trims a line and squeezes internal whitespace runs to a
// single space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
