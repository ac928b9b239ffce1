package provider_test

import (
	"context"
	"encoding"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/cache"
	"github.com/mrleolava/job-search-command-center/internal/config"
	"github.com/mrleolava/job-search-command-center/internal/errors"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/provider"
)

// binCache is an in-memory stand-in for the redis cache: values round-trip
// through their binary encoding exactly like the real implementation.
type binCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newBinCache() *binCache {
	return &binCache{m: make(map[string][]byte)}
}

func (c *binCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case string:
		c.m[key] = []byte(v)
	case encoding.BinaryMarshaler:
		data, err := v.MarshalBinary()
		if err != nil {
			return err
		}
		c.m[key] = data
	default:
		return cache.ErrInvalidValue
	}
	return nil
}

func (c *binCache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.m[key]
	if !ok {
		return cache.ErrNotFound
	}
	switch v := value.(type) {
	case *string:
		*v = string(data)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(data)
	default:
		return cache.ErrInvalidValue
	}
	return nil
}

func (c *binCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

func (c *binCache) Close() error { return nil }

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		GreenhouseAPIBaseURL: baseURL,
		AshbyAPIBaseURL:      baseURL,
		LeverAPIBaseURL:      baseURL,
		ProviderTimeout:      time.Second,
		CacheTTL:             time.Minute,
	}
}

func TestGreenhouseFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/boards/acme/jobs", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("content"))
		w.Write([]byte(`{"jobs": [
			{
				"id": 101,
				"title": "Senior Account Executive",
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/101",
				"updated_at": "2024-05-01T12:00:00Z",
				"content": "Pay: $120k - $160k OTE",
				"location": {"name": "Remote - US"}
			},
			{
				"id": 102,
				"title": "Director of Sales",
				"first_published_at": "2024-04-01T09:00:00Z",
				"location": {"name": "New York, NY"}
			}
		]}`))
	}))
	defer srv.Close()

	gh := provider.NewGreenhouse(testConfig(srv.URL), zap.NewNop(), newBinCache(), srv.Client())
	postings, err := gh.Fetch(context.Background(), "Acme", "acme")
	require.NoError(t, err)
	require.Len(t, postings, 2)

	first := postings[0]
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Senior Account Executive", first.Title)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/101", first.URL)
	assert.Equal(t, "greenhouse", first.Source)
	assert.True(t, first.IsRemote)
	require.NotNil(t, first.DatePosted)
	assert.Equal(t, "2024-05-01T12:00:00Z", *first.DatePosted)
	require.NotNil(t, first.SalaryMin)
	assert.Equal(t, 120000, *first.SalaryMin)
	require.NotNil(t, first.SalaryMax)
	assert.Equal(t, 160000, *first.SalaryMax)

	second := postings[1]
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/102", second.URL)
	assert.False(t, second.IsRemote)
	require.NotNil(t, second.DatePosted)
	assert.Equal(t, "2024-04-01T09:00:00Z", *second.DatePosted)
	assert.Nil(t, second.SalaryMin)
}

func TestGreenhouseFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	gh := provider.NewGreenhouse(testConfig(srv.URL), zap.NewNop(), newBinCache(), srv.Client())
	_, err := gh.Fetch(context.Background(), "Ghost", "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestGreenhouseCheckBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boards/acme/jobs":
			w.Write([]byte(`{"jobs": []}`))
		case "/boards/weird/jobs":
			w.Write([]byte(`{"error": "nope"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gh := provider.NewGreenhouse(testConfig(srv.URL), zap.NewNop(), newBinCache(), srv.Client())
	assert.True(t, gh.CheckBoard(context.Background(), "acme"))
	assert.False(t, gh.CheckBoard(context.Background(), "weird"))
	assert.False(t, gh.CheckBoard(context.Background(), "ghost"))
}

func TestAshbyFetchPrefersCompensationSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posting-api/job-board/acme", r.URL.Path)
		w.Write([]byte(`{"jobs": [
			{
				"id": "a1",
				"title": "Enterprise Account Executive",
				"location": "San Francisco",
				"publishedAt": "2024-05-02T00:00:00Z",
				"isRemote": true,
				"descriptionPlain": "On-target earnings of $300k",
				"compensationTierSummary": "$140K - $170K"
			},
			{
				"id": "a2",
				"title": "Sales Manager",
				"location": "Remote in Europe",
				"descriptionPlain": "Base salary $90k"
			}
		]}`))
	}))
	defer srv.Close()

	ashby := provider.NewAshby(testConfig(srv.URL), zap.NewNop(), newBinCache(), srv.Client())
	postings, err := ashby.Fetch(context.Background(), "Acme", "acme")
	require.NoError(t, err)
	require.Len(t, postings, 2)

	first := postings[0]
	assert.Equal(t, "ashby", first.Source)
	assert.Equal(t, "https://jobs.ashbyhq.com/acme/a1", first.URL)
	assert.True(t, first.IsRemote)
	require.NotNil(t, first.SalaryMin)
	assert.Equal(t, 140000, *first.SalaryMin)
	require.NotNil(t, first.SalaryMax)
	assert.Equal(t, 170000, *first.SalaryMax)

	second := postings[1]
	assert.True(t, second.IsRemote, "location text marks it remote")
	require.NotNil(t, second.SalaryMin)
	assert.Equal(t, 90000, *second.SalaryMin)
}

func TestAshbyCheckBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/posting-api/job-board/acme" {
			w.Write([]byte(`{"jobs": []}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	ashby := provider.NewAshby(testConfig(srv.URL), zap.NewNop(), newBinCache(), srv.Client())
	assert.True(t, ashby.CheckBoard(context.Background(), "acme"))
	assert.False(t, ashby.CheckBoard(context.Background(), "ghost"))
}

func TestLeverFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/postings/acme", r.URL.Path)
		require.Equal(t, "json", r.URL.Query().Get("mode"))
		w.Write([]byte(`[
			{
				"id": "l1",
				"text": "Strategic Account Executive",
				"hostedUrl": "https://jobs.lever.co/acme/l1",
				"createdAt": 1700000000000,
				"workplaceType": "remote",
				"descriptionPlain": "Salary range $130,000 - $150,000",
				"categories": {"location": "US"}
			},
			{
				"id": "l2",
				"text": "Sales Manager",
				"categories": {"location": "London"}
			}
		]`))
	}))
	defer srv.Close()

	lever := provider.NewLever(testConfig(srv.URL), zap.NewNop(), newBinCache(), srv.Client())
	postings, err := lever.Fetch(context.Background(), "Acme", "acme")
	require.NoError(t, err)
	require.Len(t, postings, 2)

	first := postings[0]
	assert.Equal(t, "lever", first.Source)
	assert.Equal(t, "Strategic Account Executive", first.Title)
	assert.Equal(t, "https://jobs.lever.co/acme/l1", first.URL)
	assert.True(t, first.IsRemote)
	require.NotNil(t, first.DatePosted)
	assert.Equal(t, "2023-11-14T22:13:20Z", *first.DatePosted)
	require.NotNil(t, first.SalaryMin)
	assert.Equal(t, 130000, *first.SalaryMin)

	second := postings[1]
	assert.Equal(t, "https://jobs.lever.co/acme/l2", second.URL)
	assert.False(t, second.IsRemote)
	assert.Nil(t, second.DatePosted)
}

func TestFetchUsesCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"jobs": [{"id": 1, "title": "Head of Sales"}]}`))
	}))
	defer srv.Close()

	c := newBinCache()
	gh := provider.NewGreenhouse(testConfig(srv.URL), zap.NewNop(), c, srv.Client())

	first, err := gh.Fetch(context.Background(), "Acme", "acme")
	require.NoError(t, err)
	second, err := gh.Fetch(context.Background(), "Acme", "acme")
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, first, second)
}

func TestAllAdapterOrderAndSlugs(t *testing.T) {
	adapters := provider.All(testConfig("http://example.invalid"), zap.NewNop(), newBinCache())
	require.Len(t, adapters, 3)
	assert.Equal(t, "greenhouse", adapters[0].ID())
	assert.Equal(t, "ashby", adapters[1].ID())
	assert.Equal(t, "lever", adapters[2].ID())

	gh := "gh-slug"
	lv := "lv-slug"
	co := models.Company{GreenhouseSlug: &gh, LeverSlug: &lv}
	require.NotNil(t, provider.Slug(adapters[0], co))
	assert.Equal(t, "gh-slug", *provider.Slug(adapters[0], co))
	assert.Nil(t, provider.Slug(adapters[1], co))
	require.NotNil(t, provider.Slug(adapters[2], co))
	assert.Equal(t, "lv-slug", *provider.Slug(adapters[2], co))
}
