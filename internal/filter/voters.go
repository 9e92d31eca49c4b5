package filter

import (
	"fmt"
	"strings"
)

// VoterRange is one of three fixed, non-overlapping total-voter buckets.
type VoterRange string

// Bucket labels as shown to users.
const (
	Below1500 VoterRange = "<১৫০০"
	From1500  VoterRange = "১৫০০-২৫০০"
	Above2500 VoterRange = ">২৫০০"
)

const (
	lowerBound = 1500
	upperBound = 2500
)

// VoterRanges lists the buckets in display order.
var VoterRanges = []VoterRange{Below1500, From1500, Above2500}

var rangeAliases = map[string]VoterRange{
	"lt1500":    Below1500,
	"<1500":     Below1500,
	"1500-2500": From1500,
	"gt2500":    Above2500,
	">2500":     Above2500,
}

// ParseVoterRange accepts a bucket label or an ASCII alias.
func ParseVoterRange(s string) (VoterRange, error) {
	s = strings.TrimSpace(s)
	for _, vr := range VoterRanges {
		if string(vr) == s {
			return vr, nil
		}
	}
	if vr, ok := rangeAliases[strings.ToLower(s)]; ok {
		return vr, nil
	}
	return "", fmt.Errorf("unknown voter range %q", s)
}

// Contains reports whether total falls in the bucket.
func (vr VoterRange) Contains(total int) bool {
	switch vr {
	case Below1500:
		return total < lowerBound
	case From1500:
		return total >= lowerBound && total <= upperBound
	case Above2500:
		return total > upperBound
	}
	return false
}

// BucketOf returns the bucket holding total. Every integer has exactly one.
func BucketOf(total int) VoterRange {
	for _, vr := range VoterRanges {
		if vr.Contains(total) {
			return vr
		}
	}
	return ""
}

// ParseVoters reads a total-voters display string as an integer.
//
// Thousands separators are removed, then the leading integer is taken the
// way a lenient parser would ("1500 জন" is 1500). Anything without leading
// digits counts as zero.
func ParseVoters(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		digits++
		if n > 1<<40 {
			break
		}
	}
	if digits == 0 {
		return 0
	}
	if neg {
		return -n
	}
	return n
}
