package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrleolava/job-search-command-center/internal/filter"
	"github.com/mrleolava/job-search-command-center/internal/models"
)

func strPtr(s string) *string { return &s }

func posting(title string, location *string, remote bool) models.RawPosting {
	return models.RawPosting{Title: title, Location: location, IsRemote: remote}
}

func TestMatchesInclude(t *testing.T) {
	e := filter.New(models.FilterConfig{TitleKeywords: []string{"Account Executive", "sales"}})

	assert.True(t, e.MatchesInclude("Senior Account Executive"))
	assert.True(t, e.MatchesInclude("HEAD OF SALES"))
	assert.False(t, e.MatchesInclude("Software Engineer"))
}

func TestEmptyIncludeAcceptsAll(t *testing.T) {
	e := filter.New(models.FilterConfig{})
	assert.True(t, e.MatchesInclude("Anything At All"))
	assert.True(t, e.Match(posting("Anything At All", nil, false)))
}

func TestMatchesExclude(t *testing.T) {
	e := filter.New(models.FilterConfig{ExcludeKeywords: []string{"recruiter", "Clearance"}})

	assert.True(t, e.MatchesExclude("Technical Recruiter"))
	assert.True(t, e.MatchesExclude("AE (TS/SCI clearance required)"))
	assert.False(t, e.MatchesExclude("Account Executive"))
}

func TestEmptyExcludeKeywordIsIgnored(t *testing.T) {
	e := filter.New(models.FilterConfig{ExcludeKeywords: []string{""}})
	assert.False(t, e.MatchesExclude("Account Executive"))
}

func TestMatchesLocation(t *testing.T) {
	e := filter.New(models.FilterConfig{Locations: []string{"New York", "Boston"}})

	assert.True(t, e.MatchesLocation(strPtr("New York, NY"), false))
	assert.True(t, e.MatchesLocation(strPtr("Greater Boston Area"), false))
	assert.False(t, e.MatchesLocation(strPtr("San Francisco, CA"), false))
	assert.False(t, e.MatchesLocation(nil, false))
}

func TestRemoteAlwaysPassesLocation(t *testing.T) {
	e := filter.New(models.FilterConfig{Locations: []string{"New York"}})

	assert.True(t, e.MatchesLocation(strPtr("San Francisco, CA"), true))
	assert.True(t, e.MatchesLocation(strPtr("Remote - US"), false))
	assert.True(t, e.MatchesLocation(nil, true))
}

func TestEmptyLocationSetAcceptsAll(t *testing.T) {
	e := filter.New(models.FilterConfig{})
	assert.True(t, e.MatchesLocation(strPtr("Anywhere"), false))
	assert.True(t, e.MatchesLocation(nil, false))
}

func TestMatchComposesPredicates(t *testing.T) {
	e := filter.New(models.FilterConfig{
		TitleKeywords:   []string{"account executive"},
		ExcludeKeywords: []string{"recruiter"},
		Locations:       []string{"new york"},
	})

	assert.True(t, e.Match(posting("Senior Account Executive", strPtr("New York, NY"), false)))
	assert.True(t, e.Match(posting("Account Executive", nil, true)))
	assert.False(t, e.Match(posting("Recruiter, Account Executive team", strPtr("New York, NY"), false)))
	assert.False(t, e.Match(posting("Account Executive", strPtr("Austin, TX"), false)))
	assert.False(t, e.Match(posting("Software Engineer", strPtr("New York, NY"), false)))
}

func TestKeywordsAreTrimmedAndCaseInsensitive(t *testing.T) {
	e := filter.New(models.FilterConfig{TitleKeywords: []string{"  Account Executive  "}})
	assert.True(t, e.MatchesInclude("account executive"))
}
