// Package salary extracts a normalized annual compensation range from
// free-text job descriptions. Extraction is a fixed-priority list of rules;
// the first rule that matches wins, so precedence stays auditable rule by
// rule.
package salary

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is a parsed compensation range. A nil bound means the text carried
// no usable value for it.
type Range struct {
	Min *int
	Max *int
}

// Empty reports whether no bound was extracted at all.
func (r Range) Empty() bool {
	return r.Min == nil && r.Max == nil
}

// minAnnual is the floor below which a parsed dollar figure is rejected as a
// salary. It separates annual compensation from equity percentages, bonus
// figures and stray numbers.
const minAnnual = 20000

var (
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	entityPattern = regexp.MustCompile(`&[a-z]+;`)

	// "$120k - $160k", en/em dashes and repeated hyphens both accepted.
	kRangePattern = regexp.MustCompile(`\$\s*(\d+)\s*[kK]\s*[-\x{2013}\x{2014}]+\s*\$\s*(\d+)\s*[kK]`)

	// "$120-160k": single leading $, k only on the upper bound.
	kShorthandPattern = regexp.MustCompile(`\$\s*(\d+)\s*[-\x{2013}\x{2014}]+\s*(\d+)\s*[kK]`)

	// "$120,000 - $160,000" or "$120,000 to $160,000".
	fullRangePattern = regexp.MustCompile(`(?i)\$\s*([\d,]+)\s*(?:[-\x{2013}\x{2014}]+|to)\s*\$\s*([\d,]+)`)

	// "$150,000/yr", "$150,000 per annum", "$150,000 base".
	annualizedPattern = regexp.MustCompile(`(?i)\$\s*([\d,]+)\s*(?:/\s*(?:year|yr|annually)|per\s+(?:year|annum)|base|annually)`)

	// Standalone "$120k", only trusted near salary vocabulary.
	standaloneKPattern = regexp.MustCompile(`\$\s*(\d+)\s*[kK]`)
	contextPattern     = regexp.MustCompile(`(?i)(?:salary|compensation|pay|earning|ote|base|annual|total\s+comp)`)
)

type rule struct {
	name  string
	apply func(text string) (Range, bool)
}

// rules are evaluated in order; the first match is returned.
var rules = []rule{
	{"k-range", extractKRange},
	{"k-shorthand", extractKShorthand},
	{"full-range", extractFullRange},
	{"annualized-single", extractAnnualized},
	{"contextual-k", extractContextualK},
}

// Extract parses text into a compensation range. It is pure, never panics,
// and returns an empty Range when nothing salary-like is found.
func Extract(text *string) Range {
	if text == nil || *text == "" {
		return Range{}
	}

	clean := tagPattern.ReplaceAllString(*text, " ")
	clean = entityPattern.ReplaceAllString(clean, " ")

	for _, r := range rules {
		if rng, ok := r.apply(clean); ok {
			return rng
		}
	}
	return Range{}
}

// boundedRange enforces the invariants shared by every range rule: both
// bounds at or above the floor, upper bound not below the lower.
func boundedRange(min, max int) (Range, bool) {
	if min < minAnnual || max < minAnnual || max < min {
		return Range{}, false
	}
	return Range{Min: &min, Max: &max}, true
}

func extractKRange(text string) (Range, bool) {
	m := kRangePattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	return boundedRange(atoi(m[1])*1000, atoi(m[2])*1000)
}

func extractKShorthand(text string) (Range, bool) {
	m := kShorthandPattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	v1, v2 := atoi(m[1]), atoi(m[2])
	// Values of 1000 or more are literal dollar amounts, not k-shorthand.
	if v1 >= 1000 || v2 >= 1000 {
		return Range{}, false
	}
	return boundedRange(v1*1000, v2*1000)
}

func extractFullRange(text string) (Range, bool) {
	m := fullRangePattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	v1 := atoi(strings.ReplaceAll(m[1], ",", ""))
	v2 := atoi(strings.ReplaceAll(m[2], ",", ""))
	return boundedRange(v1, v2)
}

func extractAnnualized(text string) (Range, bool) {
	m := annualizedPattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	v := atoi(strings.ReplaceAll(m[1], ",", ""))
	if v < minAnnual {
		return Range{}, false
	}
	return Range{Min: &v}, true
}

func extractContextualK(text string) (Range, bool) {
	if !contextPattern.MatchString(text) {
		return Range{}, false
	}
	m := standaloneKPattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	v := atoi(m[1]) * 1000
	if v < minAnnual {
		return Range{}, false
	}
	return Range{Min: &v}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
