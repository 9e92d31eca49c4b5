// Package sheet locates and downloads the spreadsheet that feeds the dashboard.
package sheet

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "centerhub/internal/errors"
)

// DefaultBaseURL is the Google Sheets document root.
const DefaultBaseURL = "https://docs.google.com/spreadsheets/d/"

// idPattern captures the document id from a full sheet link.
var idPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// ExtractID returns the spreadsheet id from a sheet link or a bare id.
//
// Accepted input:
//   - https://docs.google.com/spreadsheets/d/<id>/edit?usp=sharing
//   - <id>
//
// Input that contains no /d/<id> segment is taken as an id after trimming.
// Blank input is rejected with InvalidSourceError.
func ExtractID(input string) (string, error) {
	if m := idPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}
	id := strings.TrimSpace(input)
	if id == "" {
		return "", apperrors.NewInvalidSourceError(input)
	}
	return id, nil
}

// ExportURL returns the CSV export endpoint of the spreadsheet.
func ExportURL(baseURL, id string) string {
	return fmt.Sprintf("%s%s/export?format=csv", ensureSlash(baseURL), id)
}

// EditURL returns the human-facing sharing link of the spreadsheet.
func EditURL(baseURL, id string) string {
	return fmt.Sprintf("%s%s/edit?usp=sharing", ensureSlash(baseURL), id)
}

func ensureSlash(s string) string {
	if s == "" {
		s = DefaultBaseURL
	}
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}
