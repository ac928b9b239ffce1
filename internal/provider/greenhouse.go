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

const greenhousePublicBoardURL = "https://boards.greenhouse.io"

// Greenhouse adapts the public Greenhouse job board API. The board list
// returns full HTML descriptions when content=true, which feed the salary
// extractor.
type Greenhouse struct {
	baseURL  string
	client   *http.Client
	logger   *zap.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewGreenhouse(cfg *config.Config, logger *zap.Logger, c cache.Cache, client *http.Client) *Greenhouse {
	return &Greenhouse{
		baseURL:  cfg.GreenhouseAPIBaseURL,
		client:   client,
		logger:   logger.Named("greenhouse"),
		cache:    c,
		cacheTTL: cfg.CacheTTL,
	}
}

func (g *Greenhouse) ID() string { return "greenhouse" }

type greenhouseBoard struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	AbsoluteURL      string `json:"absolute_url"`
	UpdatedAt        string `json:"updated_at"`
	FirstPublishedAt string `json:"first_published_at"`
	Content          string `json:"content"`
	Location         *struct {
		Name string `json:"name"`
	} `json:"location"`
}

func (g *Greenhouse) Fetch(ctx context.Context, companyName, slug string) ([]models.RawPosting, error) {
	ctx, span := tracer.Start(ctx, "Greenhouse.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("board.slug", slug))

	key := fmt.Sprintf("board:greenhouse:%s", slug)
	return cachedPostings(ctx, g.cache, g.logger, key, g.cacheTTL, func() (models.PostingList, error) {
		url := fmt.Sprintf("%s/boards/%s/jobs?content=true", g.baseURL, slug)

		var board greenhouseBoard
		if err := getJSON(ctx, g.client, g.logger, url, &board); err != nil {
			span.RecordError(err)
			return nil, err
		}

		postings := make(models.PostingList, 0, len(board.Jobs))
		for _, j := range board.Jobs {
			postings = append(postings, g.normalize(companyName, slug, j))
		}
		g.logger.Debug("fetched board",
			zap.String("slug", slug),
			zap.Int("postings", len(postings)))
		return postings, nil
	})
}

func (g *Greenhouse) normalize(companyName, slug string, j greenhouseJob) models.RawPosting {
	url := j.AbsoluteURL
	if url == "" {
		url = fmt.Sprintf("%s/%s/jobs/%d", greenhousePublicBoardURL, slug, j.ID)
	}

	locName := ""
	if j.Location != nil {
		locName = j.Location.Name
	}

	date := j.UpdatedAt
	if date == "" {
		date = j.FirstPublishedAt
	}

	rng := salary.Extract(strPtr(j.Content))

	return models.RawPosting{
		Company:     companyName,
		Title:       j.Title,
		URL:         url,
		Location:    strPtr(locName),
		DatePosted:  strPtr(date),
		Source:      g.ID(),
		IsRemote:    strings.Contains(strings.ToLower(locName), "remote"),
		SalaryMin:   rng.Min,
		SalaryMax:   rng.Max,
		Description: strPtr(j.Content),
	}
}

// CheckBoard probes the board list without content; a well-formed jobs array
// means the slug exists. Any failure counts as not found.
func (g *Greenhouse) CheckBoard(ctx context.Context, slug string) bool {
	ctx, span := tracer.Start(ctx, "Greenhouse.CheckBoard")
	defer span.End()
	span.SetAttributes(telemetry.String("board.slug", slug))

	url := fmt.Sprintf("%s/boards/%s/jobs", g.baseURL, slug)

	var board struct {
		Jobs *[]greenhouseJob `json:"jobs"`
	}
	if err := getJSON(ctx, g.client, g.logger, url, &board); err != nil {
		return false
	}
	return board.Jobs != nil
}
