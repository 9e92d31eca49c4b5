package filter

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"centerhub/internal/center"
)

// placeholders never appear as selectable options.
var placeholders = map[string]bool{
	"":                  true,
	center.NoData:       true,
	center.NotAvailable: true,
	center.ZeroCount:    true,
	center.Dash:         true,
	All:                 true,
}

// Tab is one entry of the upazila tab row.
type Tab struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Options returns the values of d reachable from the current selection if
// only d were changed: every other dimension stays applied, d itself is
// relaxed. The search text is not applied.
//
// The result is sorted with Bengali collation and always starts with All.
// Placeholder values are left out. TotalVoters has a fixed bucket list.
func Options(records []center.Record, sel Selection, d Dimension) []string {
	if d == TotalVoters {
		out := []string{All}
		for _, vr := range VoterRanges {
			out = append(out, string(vr))
		}
		return out
	}

	seen := make(map[string]bool)
	var values []string
	for _, r := range records {
		if !matches(r, sel, d) {
			continue
		}
		v := r.Field(string(d))
		if placeholders[v] || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sortLocale(values)
	return append([]string{All}, values...)
}

// AllOptions computes Options for every dimension.
func AllOptions(records []center.Record, sel Selection) map[Dimension][]string {
	out := make(map[Dimension][]string, len(Dimensions))
	for _, d := range Dimensions {
		out[d] = Options(records, sel, d)
	}
	return out
}

// UpazilaTabs returns every upazila in the data set with its record count,
// independent of the current selection. The first tab is All with the total.
func UpazilaTabs(records []center.Record) []Tab {
	counts := make(map[string]int)
	var names []string
	for _, r := range records {
		if r.Upazila == "" {
			continue
		}
		if counts[r.Upazila] == 0 {
			names = append(names, r.Upazila)
		}
		counts[r.Upazila]++
	}
	sortLocale(names)

	tabs := make([]Tab, 0, len(names)+1)
	tabs = append(tabs, Tab{Name: All, Count: len(records)})
	for _, n := range names {
		tabs = append(tabs, Tab{Name: n, Count: counts[n]})
	}
	return tabs
}

// sortLocale sorts in place with Bengali collation rules.
func sortLocale(values []string) {
	collate.New(language.Bengali).SortStrings(values)
}
