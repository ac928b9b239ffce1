// Package filter applies a profile's keyword and location rules to raw
// postings. The three predicates are independent and composed by AND; all
// matching is case-insensitive substring.
package filter

import (
	"strings"

	"github.com/mrleolava/job-search-command-center/internal/models"
)

// Engine holds one profile's filter configuration with keywords pre-lowered.
type Engine struct {
	include   []string
	exclude   []string
	locations []string
}

// New builds an Engine from a profile's FilterConfig.
func New(cfg models.FilterConfig) *Engine {
	return &Engine{
		include:   lowerAll(cfg.TitleKeywords),
		exclude:   lowerAll(cfg.ExcludeKeywords),
		locations: lowerAll(cfg.Locations),
	}
}

// Match reports whether a posting passes all three predicates.
func (e *Engine) Match(p models.RawPosting) bool {
	return e.MatchesInclude(p.Title) &&
		!e.MatchesExclude(p.Title) &&
		e.MatchesLocation(p.Location, p.IsRemote)
}

// MatchesInclude is true when the title contains any include keyword. An
// empty include set accepts every title.
func (e *Engine) MatchesInclude(title string) bool {
	if len(e.include) == 0 {
		return true
	}
	lower := strings.ToLower(title)
	for _, kw := range e.include {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchesExclude is true when the title contains any exclude keyword.
func (e *Engine) MatchesExclude(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range e.exclude {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MatchesLocation is true for remote postings, for an empty location filter
// set, and for locations containing one of the accepted substrings.
func (e *Engine) MatchesLocation(location *string, isRemote bool) bool {
	if len(e.locations) == 0 {
		return true
	}
	loc := ""
	if location != nil {
		loc = strings.ToLower(*location)
	}
	if isRemote || strings.Contains(loc, "remote") {
		return true
	}
	for _, want := range e.locations {
		if strings.Contains(loc, want) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
