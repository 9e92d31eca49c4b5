package header

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExactBeatsSubstring(t *testing.T) {
	rule := Rule{Field: "centerName", Candidates: []string{"center name", "কেন্দ্র"}}
	header := []string{"center", "center name"}

	assert.Equal(t, 1, Resolve(header, rule))
}

func TestResolveExclusion(t *testing.T) {
	rule := Rule{Field: "policeTeam", Candidates: []string{"police"}, Exclude: []string{"phone"}}

	assert.Equal(t, NotFound, Resolve([]string{"police phone"}, rule))
	assert.Equal(t, 1, Resolve([]string{"police phone", "police team"}, rule))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rule     Rule
		expected int
	}{
		{
			name:     "case insensitive exact",
			header:   []string{"SL", "Upazila"},
			rule:     Rule{Candidates: []string{"upazila"}},
			expected: 1,
		},
		{
			name:     "first exact match by row order wins",
			header:   []string{"thana", "upazila"},
			rule:     Rule{Candidates: []string{"upazila", "thana"}},
			expected: 0,
		},
		{
			name:     "substring fallback",
			header:   []string{"sl", "Upazila Name"},
			rule:     Rule{Candidates: []string{"upazila"}},
			expected: 1,
		},
		{
			name:     "exclusion ignored for exact match",
			header:   []string{"phone"},
			rule:     Rule{Candidates: []string{"phone"}, Exclude: []string{"phone"}},
			expected: 0,
		},
		{
			name:     "no match",
			header:   []string{"a", "b"},
			rule:     Rule{Candidates: []string{"latitude"}},
			expected: NotFound,
		},
		{
			name:     "empty header",
			header:   nil,
			rule:     Rule{Candidates: []string{"latitude"}},
			expected: NotFound,
		},
		{
			name:     "header cells trimmed",
			header:   []string{"  Risk Status  "},
			rule:     Rule{Candidates: []string{"risk status"}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.header, tt.rule))
		})
	}
}

func TestDefaultRulesPhoneColumns(t *testing.T) {
	header := []string{"কেন্দ্রের নাম", "প্রিসাইডিং অফিসার মোবাইল", "ম্যাজিস্ট্রেট মোবাইল", "পুলিশ ফোর্স মোবাইল", "পুলিশ ফোর্স"}
	cols := ResolveAll(header, DefaultRules())

	assert.Equal(t, 0, cols.Index("centerName"))
	assert.Equal(t, 1, cols.Index("phone"))
	assert.Equal(t, 2, cols.Index("magistratePhone"))
	assert.Equal(t, 4, cols.Index("policeTeam"))
	assert.Equal(t, NotFound, cols.Index("latitude"))
}

func TestDefaultRulesEnglishHeader(t *testing.T) {
	cols := ResolveAll([]string{"Center Name", "Upazila", "Risk Status"}, DefaultRules())

	assert.Equal(t, 0, cols.Index("centerName"))
	assert.Equal(t, 1, cols.Index("upazila"))
	assert.Equal(t, 2, cols.Index("riskStatus"))
	assert.Equal(t, NotFound, cols.Index("phone"))
	assert.Equal(t, NotFound, cols.Index("no-such-field"))
}

func TestColumnMapCell(t *testing.T) {
	cols := ColumnMap{"a": 0, "b": 2, "c": NotFound}
	row := []string{" x ", ""}

	v, ok := cols.Cell(row, "a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	_, ok = cols.Cell(row, "b")
	assert.False(t, ok, "index past row end")

	_, ok = cols.Cell(row, "c")
	assert.False(t, ok, "unresolved field")

	cols["d"] = 1
	_, ok = cols.Cell(row, "d")
	assert.False(t, ok, "blank cell")
}

func TestParseRulesValidation(t *testing.T) {
	_, err := ParseRules([]byte("- candidates: [x]"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("- field: a"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("- field: a\n  candidates: [x]\n- field: a\n  candidates: [y]"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("not: [valid"))
	assert.Error(t, err)
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Len(t, rules, 21)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- field: centerName\n  candidates: [school]\n"), 0644))

	rules, err = LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"school"}, rules[0].Candidates)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
