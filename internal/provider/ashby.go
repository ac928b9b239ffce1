package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/cache"
	"github.com/mrleolava/job-search-command-center/internal/config"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/salary"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

const ashbyPublicBoardURL = "https://jobs.ashbyhq.com"

// Ashby adapts the Ashby posting API. Unlike Greenhouse, Ashby sometimes
// carries an explicit compensation summary; that field takes precedence over
// whatever the description text yields.
type Ashby struct {
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewAshby(cfg *config.Config, logger *zap.Logger, c cache.Cache, client *http.Client) *Ashby {
	return &Ashby{
		baseURL:  cfg.AshbyAPIBaseURL,
		client:   client,
		logger:   logger.Named("ashby"),
		cache:    c,
		cacheTTL: cfg.CacheTTL,
	}
}

func (a *Ashby) ID() string { return "ashby" }

type ashbyBoard struct {
	Jobs []ashbyJob `json:"jobs"`
}

type ashbyJob struct {
	ID                      string `json:"id"`
	Title                   string `json:"title"`
	JobURL                  string `json:"jobUrl"`
	Location                string `json:"location"`
	PublishedAt             string `json:"publishedAt"`
	IsRemote                bool   `json:"isRemote"`
	DescriptionPlain        string `json:"descriptionPlain"`
	CompensationTierSummary string `json:"compensationTierSummary"`
}

func (a *Ashby) Fetch(ctx context.Context, companyName, slug string) ([]models.RawPosting, error) {
	ctx, span := tracer.Start(ctx, "Ashby.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("board.slug", slug))

	key := fmt.Sprintf("board:ashby:%s", slug)
	return cachedPostings(ctx, a.cache, a.logger, key, a.cacheTTL, func() (models.PostingList, error) {
		url := fmt.Sprintf("%s/posting-api/job-board/%s", a.baseURL, slug)

		var board ashbyBoard
		if err := getJSON(ctx, a.client, a.logger, url, &board); err != nil {
			span.RecordError(err)
			return nil, err
		}

		postings := make(models.PostingList, 0, len(board.Jobs))
		for _, j := range board.Jobs {
			postings = append(postings, a.normalize(companyName, slug, j))
		}
		a.logger.Debug("fetched board",
			zap.String("slug", slug),
			zap.Int("postings", len(postings)))
		return postings, nil
	})
}

func (a *Ashby) normalize(companyName, slug string, j ashbyJob) models.RawPosting {
	url := j.JobURL
	if url == "" {
		url = fmt.Sprintf("%s/%s/%s", ashbyPublicBoardURL, slug, j.ID)
	}

	// The compensation tier summary is authoritative when it parses; the
	// description is the fallback.
	rng := salary.Extract(strPtr(j.CompensationTierSummary))
	if rng.Empty() {
		rng = salary.Extract(strPtr(j.DescriptionPlain))
	}

	return models.RawPosting{
		Company:     companyName,
		Title:       j.Title,
		URL:         url,
		Location:    strPtr(j.Location),
		DatePosted:  strPtr(j.PublishedAt),
		Source:      a.ID(),
		IsRemote:    j.IsRemote || strings.Contains(strings.ToLower(j.Location), "remote"),
		SalaryMin:   rng.Min,
		SalaryMax:   rng.Max,
		Description: strPtr(j.DescriptionPlain),
	}
}

// CheckBoard accepts any response that carries a jobs key, even an empty
// board.
func (a *Ashby) CheckBoard(ctx context.Context, slug string) bool {
	ctx, span := tracer.Start(ctx, "Ashby.CheckBoard")
	defer span.End()
	span.SetAttributes(telemetry.String("board.slug", slug))

	url := fmt.Sprintf("%s/posting-api/job-board/%s", a.baseURL, slug)

	var board struct {
		Jobs json.RawMessage `json:"jobs"`
	}
	if err := getJSON(ctx, a.client, a.logger, url, &board); err != nil {
		return false
	}
	return board.Jobs != nil
}
