// Package header maps logical record fields to columns of a spreadsheet header row.
//
// Spreadsheet headers drift between deployments: different wording, Bangla
// or English, extra words. Each logical field therefore carries a list of
// candidate names and an optional list of excluded substrings, and one
// shared resolver evaluates every rule the same way:
//
//  1. Exact match: the first header cell equal to any candidate wins.
//  2. Substring match: the first header cell containing any candidate and
//     none of the excluded substrings wins.
//  3. Otherwise the field is absent for this dataset (NotFound).
//
// All comparisons are case-insensitive. The default rule table is embedded
// as YAML and can be replaced by an operator-supplied file.
package header

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NotFound is the column index reported for a field with no matching header.
const NotFound = -1

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rule describes how to find one logical field in a header row.
type Rule struct {
	Field      string   `yaml:"field"`
	Candidates []string `yaml:"candidates"`
	Exclude    []string `yaml:"exclude,omitempty"`
}

// ColumnMap maps a logical field name to its zero-based column index.
//
// Built once per ingestion pass from the header row and read-only afterwards.
type ColumnMap map[string]int

// Index returns the column of field, or NotFound when the field was not resolved.
func (m ColumnMap) Index(field string) int {
	if idx, ok := m[field]; ok {
		return idx
	}
	return NotFound
}

// Cell returns the trimmed cell of row for field and whether it is usable.
//
// A cell is unusable when the field was not resolved, the row is too short
// or the cell is blank.
func (m ColumnMap) Cell(row []string, field string) (string, bool) {
	idx := m.Index(field)
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[idx])
	return v, v != ""
}

// DefaultRules returns the embedded rule table.
func DefaultRules() []Rule {
	rules, err := ParseRules(defaultRulesYAML)
	if err != nil {
		// The embedded table is part of the binary; a decode failure is a build defect.
		panic(fmt.Sprintf("header: embedded rules: %v", err))
	}
	return rules
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode header rules: %w", err)
	}
	seen := make(map[string]bool, len(rules))
	for i, r := range rules {
		if r.Field == "" {
			return nil, fmt.Errorf("header rule %d has no field name", i)
		}
		if len(r.Candidates) == 0 {
			return nil, fmt.Errorf("header rule %q has no candidates", r.Field)
		}
		if seen[r.Field] {
			return nil, fmt.Errorf("header rule %q defined twice", r.Field)
		}
		seen[r.Field] = true
	}
	return rules, nil
}

// LoadRules reads a rule table from path, or returns the embedded table when
// path is empty.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read header rules: %w", err)
	}
	return ParseRules(data)
}

// Resolve returns the column index for rule in header, or NotFound.
func Resolve(header []string, rule Rule) int {
	return resolveLower(lowerAll(header), rule)
}

// ResolveAll resolves every rule against header and returns the column map.
func ResolveAll(header []string, rules []Rule) ColumnMap {
	lower := lowerAll(header)
	m := make(ColumnMap, len(rules))
	for _, r := range rules {
		m[r.Field] = resolveLower(lower, r)
	}
	return m
}

func resolveLower(header []string, rule Rule) int {
	names := lowerAll(rule.Candidates)
	exclude := lowerAll(rule.Exclude)

	for i, h := range header {
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}

	for i, h := range header {
		if containsAny(h, names) && !containsAny(h, exclude) {
			return i
		}
	}
	return NotFound
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
