package provider

import (
	"context"
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

const leverPublicBoardURL = "https://jobs.lever.co"

// Lever adapts the public Lever postings API, which returns a bare array of
// postings with plain-text descriptions.
type Lever struct {
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewLever(cfg *config.Config, logger *zap.Logger, c cache.Cache, client *http.Client) *Lever {
	return &Lever{
		baseURL:  cfg.LeverAPIBaseURL,
		client:   client,
		logger:   logger.Named("lever"),
		cache:    c,
		cacheTTL: cfg.CacheTTL,
	}
}

func (l *Lever) ID() string { return "lever" }

type leverPosting struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	HostedURL        string `json:"hostedUrl"`
	CreatedAt        int64  `json:"createdAt"`
	WorkplaceType    string `json:"workplaceType"`
	DescriptionPlain string `json:"descriptionPlain"`
	Categories       struct {
		Location string `json:"location"`
	} `json:"categories"`
}

func (l *Lever) Fetch(ctx context.Context, companyName, slug string) ([]models.RawPosting, error) {
	ctx, span := tracer.Start(ctx, "Lever.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("board.slug", slug))

	key := fmt.Sprintf("board:lever:%s", slug)
	return cachedPostings(ctx, l.cache, l.logger, key, l.cacheTTL, func() (models.PostingList, error) {
		url := fmt.Sprintf("%s/postings/%s?mode=json", l.baseURL, slug)

		var list []leverPosting
		if err := getJSON(ctx, l.client, l.logger, url, &list); err != nil {
			span.RecordError(err)
			return nil, err
		}

		postings := make(models.PostingList, 0, len(list))
		for _, j := range list {
			postings = append(postings, l.normalize(companyName, slug, j))
		}
		l.logger.Debug("fetched board",
			zap.String("slug", slug),
			zap.Int("postings", len(postings)))
		return postings, nil
	})
}

func (l *Lever) normalize(companyName, slug string, j leverPosting) models.RawPosting {
	url := j.HostedURL
	if url == "" {
		url = fmt.Sprintf("%s/%s/%s", leverPublicBoardURL, slug, j.ID)
	}

	var date string
	if j.CreatedAt > 0 {
		date = time.UnixMilli(j.CreatedAt).UTC().Format(time.RFC3339)
	}

	loc := j.Categories.Location
	rng := salary.Extract(strPtr(j.DescriptionPlain))

	return models.RawPosting{
		Company:     companyName,
		Title:       j.Text,
		URL:         url,
		Location:    strPtr(loc),
		DatePosted:  strPtr(date),
		Source:      l.ID(),
		IsRemote:    j.WorkplaceType == "remote" || strings.Contains(strings.ToLower(loc), "remote"),
		SalaryMin:   rng.Min,
		SalaryMax:   rng.Max,
		Description: strPtr(j.DescriptionPlain),
	}
}

// CheckBoard requests a single posting; a JSON array response means the
// account exists.
func (l *Lever) CheckBoard(ctx context.Context, slug string) bool {
	ctx, span := tracer.Start(ctx, "Lever.CheckBoard")
	defer span.End()
	span.SetAttributes(telemetry.String("board.slug", slug))

	url := fmt.Sprintf("%s/postings/%s?mode=json&limit=1", l.baseURL, slug)

	var list []leverPosting
	if err := getJSON(ctx, l.client, l.logger, url, &list); err != nil {
		return false
	}
	return list != nil
}
