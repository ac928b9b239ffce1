package models

import (
	"encoding/json"
	"time"
)

// RawPosting is a normalized job posting as returned by a provider adapter.
// It is produced fresh on every fetch and never persisted directly; the
// canonical URL is the deduplication key against the jobs table.
type RawPosting struct {
	Company     string  `json:"company"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Location    *string `json:"location"`
	DatePosted  *string `json:"date_posted"`
	Source      string  `json:"source"`
	IsRemote    bool    `json:"is_remote"`
	SalaryMin   *int    `json:"salary_min"`
	SalaryMax   *int    `json:"salary_max"`
	Description *string `json:"description"`
}

// PostingList is cached per provider board between reconciliation runs.
type PostingList []RawPosting

func (l PostingList) MarshalBinary() ([]byte, error) {
	return json.Marshal(l)
}

func (l *PostingList) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, l)
}

// StoredJob is the persistent form of a posting that survived filtering and
// seniority scoring. Identity is the URL; the ID is derived from it.
type StoredJob struct {
	ID               string    `json:"id"`
	Company          string    `json:"company"`
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	Location         *string   `json:"location"`
	DatePosted       *string   `json:"date_posted"`
	Source           string    `json:"source"`
	IsRemote         bool      `json:"is_remote"`
	SalaryMin        *int      `json:"salary_min"`
	SalaryMax        *int      `json:"salary_max"`
	Description      *string   `json:"description"`
	SeniorityScore   *int      `json:"seniority_score"`
	IsDismissed      bool      `json:"is_dismissed"`
	ApplicationCount int       `json:"application_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// Company is a watchlist entry. A nil slug means the company is not hosted
// on that provider (or has not been detected yet).
type Company struct {
	ID             string  `json:"id"`
	ProfileID      string  `json:"profile_id"`
	Name           string  `json:"name"`
	Website        *string `json:"website"`
	GreenhouseSlug *string `json:"greenhouse_slug"`
	AshbySlug      *string `json:"ashby_slug"`
	LeverSlug      *string `json:"lever_slug"`
}

// FilterConfig is the single search configuration of a profile.
// All keyword and location matching is case-insensitive substring.
type FilterConfig struct {
	ProfileID       string   `json:"profile_id"`
	TitleKeywords   []string `json:"title_keywords"`
	ExcludeKeywords []string `json:"exclude_keywords"`
	Locations       []string `json:"locations"`
}

// Application is the initial pipeline-board row the service creates when a
// job is saved. Stage lifecycle beyond "saved" is owned by the board.
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	ProfileID string    `json:"profile_id"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

// BackfillRow is the projection used by the salary backfill pass: stored
// jobs with a description but no salary bounds yet.
type BackfillRow struct {
	ID          string
	Description string
}

// Report carries the stage counts of one reconciliation run.
type Report struct {
	ProfileID      string `json:"profile_id"`
	Companies      int    `json:"companies"`
	Fetched        int    `json:"fetched"`
	FetchErrors    int    `json:"fetch_errors"`
	Filtered       int    `json:"filtered"`
	AfterSeniority int    `json:"after_seniority"`
	AlreadyPresent int    `json:"already_present"`
	Inserted       int    `json:"inserted"`
	SalaryUpdated  int    `json:"salary_updated"`
	Backfilled     int    `json:"backfilled"`
}
