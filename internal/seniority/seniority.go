// Package seniority scores a job title/description pair on a 0-5 ordinal
// scale. 0 means entry-level (excluded from the feed), 5 means executive.
// Title signals dominate: an entry-level phrase in the title short-circuits
// everything else.
package seniority

import (
	"regexp"
	"strings"
)

// entryTitleSignals in a title force a score of 0 regardless of description.
var entryTitleSignals = []string{
	"entry level", "entry-level", "junior", "associate", "intern", "internship",
	"new grad", "graduate", "coordinator", "assistant", "analyst",
	"specialist", "development representative",
}

var entryAbbrevPattern = regexp.MustCompile(`(?i)\b(bdr|sdr)\b`)

// entryExpPatterns are low-experience requirements that mark a role as
// entry-level even when the title looks neutral.
var entryExpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b0[-\x{2013}]2\s*years`),
	regexp.MustCompile(`(?i)\b1[-\x{2013}]2\s*years`),
	regexp.MustCompile(`(?i)\b0[-\x{2013}]3\s*years`),
	regexp.MustCompile(`(?i)\b1[-\x{2013}]3\s*years`),
	regexp.MustCompile(`(?i)\b2[-\x{2013}]4\s*years`),
}

// titleRules assign the base score; first match wins.
var titleRules = []struct {
	pattern *regexp.Regexp
	score   int
}{
	{regexp.MustCompile(`(?i)\b(chief|cro|coo|cfo|ceo|cmo|cto|svp|senior vice president)\b|\bhead of\b`), 5},
	{regexp.MustCompile(`(?i)\b(vp|vice president)\b`), 4},
	{regexp.MustCompile(`(?i)\bdirector\b`), 3},
	{regexp.MustCompile(`(?i)\b(senior|lead|manager)\b`), 2},
	{regexp.MustCompile(`(?i)\b(enterprise|strategic)\b`), 1},
}

// expBoosts map experience requirements in the description to a score boost.
// At most one tier applies; first match wins.
var expBoosts = []struct {
	pattern *regexp.Regexp
	boost   int
}{
	{regexp.MustCompile(`(?i)\b(?:10|12|15)\+?\s*years`), 2},
	{regexp.MustCompile(`(?i)\b[7-9]\+?\s*years`), 1},
	{regexp.MustCompile(`(?i)\b[5-6]\+?\s*years`), 0},
}

// Score classifies a title/description pair. A nil description is treated as
// empty. The result is clamped to [0, 5].
func Score(title string, description *string) int {
	t := strings.ToLower(title)
	d := ""
	if description != nil {
		d = strings.ToLower(*description)
	}

	for _, signal := range entryTitleSignals {
		if strings.Contains(t, signal) {
			return 0
		}
	}
	if entryAbbrevPattern.MatchString(t) {
		return 0
	}
	for _, p := range entryExpPatterns {
		if p.MatchString(d) {
			return 0
		}
	}

	score := 0
	matched := false
	for _, r := range titleRules {
		if r.pattern.MatchString(t) {
			score = r.score
			matched = true
			break
		}
	}
	if !matched {
		// Neutral IC title: a 5+ year experience signal still counts as
		// mid-level.
		for _, b := range expBoosts {
			if b.pattern.MatchString(d) {
				score = 1
				break
			}
		}
	}

	if score > 0 && score < 5 {
		for _, b := range expBoosts {
			if b.pattern.MatchString(d) {
				score += b.boost
				if score > 5 {
					score = 5
				}
				break
			}
		}
	}

	return score
}

// Label returns the presentation label for a score, or "" for scores outside
// 1-5.
func Label(score int) string {
	switch score {
	case 5:
		return "C-Suite/Head"
	case 4:
		return "VP"
	case 3:
		return "Director"
	case 2:
		return "Senior"
	case 1:
		return "Mid-Level"
	default:
		return ""
	}
}
