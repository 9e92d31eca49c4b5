// Package filter evaluates search and filter selections over center records.
//
// Every function here is a pure query: it reads the record slice and the
// selection and returns a new slice. Nothing is mutated, so callers can
// share one snapshot between concurrent readers.
package filter

import (
	"fmt"
	"strings"

	"centerhub/internal/center"
)

// All is the selection value meaning "do not constrain this dimension".
const All = "সব"

// Dimension is one filterable attribute of a record.
type Dimension string

// Filterable dimensions. TotalVoters is matched by range, all others by
// exact string equality.
const (
	Upazila        Dimension = center.FieldUpazila
	Union          Dimension = center.FieldUnion
	RiskStatus     Dimension = center.FieldRiskStatus
	VoteCentreType Dimension = center.FieldVoteCentreType
	PoliceTeam     Dimension = center.FieldPoliceTeam
	BGBTeam        Dimension = center.FieldBGBTeam
	ArmyTeam       Dimension = center.FieldArmyTeam
	RABTeam        Dimension = center.FieldRABTeam
	TotalVoters    Dimension = center.FieldTotalVoters
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{
	Upazila, Union, RiskStatus, TotalVoters, VoteCentreType,
	PoliceTeam, BGBTeam, ArmyTeam, RABTeam,
}

// aliases maps short names used on the command line and in query strings.
var aliases = map[string]Dimension{
	"upazila": Upazila,
	"union":   Union,
	"risk":    RiskStatus,
	"type":    VoteCentreType,
	"police":  PoliceTeam,
	"bgb":     BGBTeam,
	"army":    ArmyTeam,
	"rab":     RABTeam,
	"voters":  TotalVoters,
}

// ParseDimension accepts a dimension name or one of its short aliases.
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	if d, ok := aliases[strings.ToLower(s)]; ok {
		return d, nil
	}
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown filter dimension %q", s)
}

// Alias returns the short name of d.
func (d Dimension) Alias() string {
	for k, v := range aliases {
		if v == d {
			return k
		}
	}
	return string(d)
}

// Selection is the current set of filter choices plus a free-text search.
//
// The zero value of a dimension (missing key or "") behaves like All.
type Selection struct {
	Search string               `json:"search"`
	Values map[Dimension]string `json:"values"`
}

// NewSelection returns a selection with every dimension set to All.
func NewSelection() Selection {
	s := Selection{Values: make(map[Dimension]string, len(Dimensions))}
	for _, d := range Dimensions {
		s.Values[d] = All
	}
	return s
}

// Get returns the selected value of d, defaulting to All.
func (s Selection) Get(d Dimension) string {
	if v := s.Values[d]; v != "" {
		return v
	}
	return All
}

// With returns a copy of s with d set to value. Picking an upazila resets
// the union choice, since unions belong to one upazila.
func (s Selection) With(d Dimension, value string) Selection {
	out := s.clone()
	if value == "" {
		value = All
	}
	out.Values[d] = value
	if d == Upazila {
		out.Values[Union] = All
	}
	return out
}

// WithSearch returns a copy of s with the search text replaced.
func (s Selection) WithSearch(search string) Selection {
	out := s.clone()
	out.Search = search
	return out
}

// Active reports whether any dimension or the search narrows the result.
func (s Selection) Active() bool {
	if s.Search != "" {
		return true
	}
	for _, d := range Dimensions {
		if s.Get(d) != All {
			return true
		}
	}
	return false
}

func (s Selection) clone() Selection {
	out := Selection{Search: s.Search, Values: make(map[Dimension]string, len(s.Values)+1)}
	for k, v := range s.Values {
		out.Values[k] = v
	}
	return out
}

// Apply returns the records matching sel, in their original order.
func Apply(records []center.Record, sel Selection) []center.Record {
	search := strings.ToLower(sel.Search)
	out := make([]center.Record, 0, len(records))
	for _, r := range records {
		if matchesSearch(r, search) && matches(r, sel, "") {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single record passes sel.
func Match(r center.Record, sel Selection) bool {
	return matchesSearch(r, strings.ToLower(sel.Search)) && matches(r, sel, "")
}

func matchesSearch(r center.Record, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.CenterName), search) ||
		strings.Contains(strings.ToLower(r.OfficerName), search) ||
		strings.Contains(strings.ToLower(r.SerialNo), search) ||
		strings.Contains(strings.ToLower(r.Union), search)
}

// matches evaluates every dimension except relax.
func matches(r center.Record, sel Selection, relax Dimension) bool {
	for _, d := range Dimensions {
		if d == relax {
			continue
		}
		want := sel.Get(d)
		if want == All {
			continue
		}
		if d == TotalVoters {
			vr, err := ParseVoterRange(want)
			if err != nil {
				return false
			}
			if !vr.Contains(ParseVoters(r.TotalVoters)) {
				return false
			}
			continue
		}
		if r.Field(string(d)) != want {
			return false
		}
	}
	return true
}

// SearchHint returns the prompt shown in an empty search box, scoped to the
// narrowest place the selection has picked.
func SearchHint(sel Selection) string {
	if u := sel.Get(Union); u != All {
		return u + " ইউনিয়ন-এর মধ্যে খুঁজুন..."
	}
	if u := sel.Get(Upazila); u != All {
		return u + " উপজেলা-এর মধ্যে খুঁজুন..."
	}
	return "কেন্দ্র, ইউনিয়ন বা অফিসারের নাম..."
}
