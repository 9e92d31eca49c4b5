// Package csvparse splits spreadsheet CSV exports into rows of trimmed fields.
//
// The parser is deliberately tolerant: a double quote only toggles quoted
// mode and is dropped, so doubled quotes are not unescaped the way RFC 4180
// readers do. Malformed input never produces an error; an unterminated quote
// simply keeps the rest of the line inside the current field.
package csvparse

import (
	"strings"
)

// Parse tokenizes raw CSV text into rows.
//
// Lines are separated by "\n" or "\r\n". Lines that are blank after trimming
// are skipped entirely and never become empty rows. Each field is trimmed of
// surrounding whitespace after it has been assembled.
func Parse(text string) [][]string {
	lines := strings.Split(text, "\n")
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, ParseLine(line))
	}
	return rows
}

// ParseLine splits a single line into fields.
func ParseLine(line string) []string {
	var (
		row     []string
		cur     strings.Builder
		inQuote bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			row = append(row, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(row, strings.TrimSpace(cur.String()))
}
