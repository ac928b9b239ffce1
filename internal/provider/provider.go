// Package provider contains one adapter per supported ATS provider. Adapters
// normalize provider responses into models.RawPosting; new providers are
// added by implementing Adapter, never by branching on a provider name in
// shared logic.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/cache"
	"github.com/mrleolava/job-search-command-center/internal/config"
	"github.com/mrleolava/job-search-command-center/internal/errors"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/provider")

// Adapter fetches and normalizes the postings of one company board on one
// ATS provider. CheckBoard is the lightweight existence probe used by board
// detection.
type Adapter interface {
	ID() string
	Fetch(ctx context.Context, companyName, slug string) ([]models.RawPosting, error)
	CheckBoard(ctx context.Context, slug string) bool
}

// Slug extracts the adapter's configured slug from a company record, nil
// when the company is not on that provider.
func Slug(a Adapter, co models.Company) *string {
	switch a.ID() {
	case "greenhouse":
		return co.GreenhouseSlug
	case "ashby":
		return co.AshbySlug
	case "lever":
		return co.LeverSlug
	}
	return nil
}

// All builds the adapter set in fetch-precedence order.
func All(cfg *config.Config, logger *zap.Logger, c cache.Cache) []Adapter {
	client := &http.Client{Timeout: cfg.ProviderTimeout}
	return []Adapter{
		NewGreenhouse(cfg, logger, c, client),
		NewAshby(cfg, logger, c, client),
		NewLever(cfg, logger, c, client),
	}
}

// getJSON performs a GET with context and decodes a 200 response into v.
// Non-200 responses and transport failures come back as domain errors so the
// caller can isolate them without inspecting the transport.
func getJSON(ctx context.Context, client *http.Client, logger *zap.Logger, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Internal("creating request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Unavailable("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return errors.NotFound("board not found", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Internal("decoding response", err)
	}
	return nil
}

// cachedPostings wraps a board fetch with the shared read-through cache.
func cachedPostings(ctx context.Context, c cache.Cache, logger *zap.Logger, key string, ttl time.Duration,
	fetch func() (models.PostingList, error)) ([]models.RawPosting, error) {

	var cached models.PostingList
	err := c.Get(ctx, key, &cached)
	if err == nil {
		logger.Debug("cache hit for board", zap.String("key", key))
		return cached, nil
	}
	if err != cache.ErrNotFound {
		logger.Warn("cache error for board", zap.String("key", key), zap.Error(err))
	}

	postings, err := fetch()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, postings, ttl); err != nil {
		logger.Warn("failed to cache board postings", zap.String("key", key), zap.Error(err))
	}
	return postings, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
