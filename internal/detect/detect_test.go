package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/cache"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/provider"
)

func adapters(as ...*checkAdapter) []provider.Adapter {
	out := make([]provider.Adapter, 0, len(as))
	for _, a := range as {
		out = append(out, a)
	}
	return out
}

func websitePtr(s string) *string { return &s }

type memCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemCache() *memCache {
	return &memCache{m: make(map[string]string)}
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := value.(string); ok {
		c.m[key] = s
	}
	return nil
}

func (c *memCache) Get(_ context.Context, key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.m[key]
	if !ok {
		return cache.ErrNotFound
	}
	if target, ok := value.(*string); ok {
		*target = s
		return nil
	}
	return cache.ErrInvalidValue
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

func (c *memCache) Close() error { return nil }

type checkAdapter struct {
	id    string
	known map[string]bool

	mu     sync.Mutex
	checks int
}

func (a *checkAdapter) ID() string { return a.id }

func (a *checkAdapter) Fetch(context.Context, string, string) ([]models.RawPosting, error) {
	return nil, nil
}

func (a *checkAdapter) CheckBoard(_ context.Context, slug string) bool {
	a.mu.Lock()
	a.checks++
	a.mu.Unlock()
	return a.known[slug]
}

func (a *checkAdapter) checkCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.checks
}

func TestDetectValidatesPerProvider(t *testing.T) {
	gh := &checkAdapter{id: "greenhouse", known: map[string]bool{"acme": true}}
	lv := &checkAdapter{id: "lever", known: map[string]bool{}}
	d := New(adapters(gh, lv), zap.NewNop(), newMemCache(), time.Second)

	got := d.Detect(context.Background(), "Acme", nil)

	require.NotNil(t, got["greenhouse"])
	assert.Equal(t, "acme", *got["greenhouse"])
	assert.Nil(t, got["lever"])
}

func TestDetectPrefersEarlierCandidate(t *testing.T) {
	// Both the no-space and the hyphenated form validate; the no-space form
	// is generated first and must win.
	gh := &checkAdapter{id: "greenhouse", known: map[string]bool{
		"blueflameai":  true,
		"blueflame-ai": true,
	}}
	d := New(adapters(gh), zap.NewNop(), newMemCache(), time.Second)

	got := d.Detect(context.Background(), "BlueFlame AI", nil)
	require.NotNil(t, got["greenhouse"])
	assert.Equal(t, "blueflameai", *got["greenhouse"])
}

func TestDetectCachesExistenceChecks(t *testing.T) {
	gh := &checkAdapter{id: "greenhouse", known: map[string]bool{"stripe": true}}
	c := newMemCache()
	d := New(adapters(gh), zap.NewNop(), c, time.Second)

	d.Detect(context.Background(), "Stripe", nil)
	first := gh.checkCount()
	assert.Equal(t, 1, first)

	d.Detect(context.Background(), "Stripe", nil)
	assert.Equal(t, first, gh.checkCount())
}

func TestDetectScrapeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/careers" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<a href="https://boards.greenhouse.io/zeta-inc/jobs">Open roles</a>`))
	}))
	defer srv.Close()

	// Name-derived candidates all fail; only the scraped slug validates.
	gh := &checkAdapter{id: "greenhouse", known: map[string]bool{"zeta-inc": true}}
	d := New(adapters(gh), zap.NewNop(), newMemCache(), time.Second)

	got := d.Detect(context.Background(), "Zeta", websitePtr(srv.URL))
	require.NotNil(t, got["greenhouse"])
	assert.Equal(t, "zeta-inc", *got["greenhouse"])
}

func TestDetectScrapedSlugMustValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`see https://jobs.lever.co/stale-slug for roles`))
	}))
	defer srv.Close()

	lv := &checkAdapter{id: "lever", known: map[string]bool{}}
	d := New(adapters(lv), zap.NewNop(), newMemCache(), time.Second)

	got := d.Detect(context.Background(), "Zeta", websitePtr(srv.URL))
	assert.Nil(t, got["lever"])
}

func TestExtractBoardLinks(t *testing.T) {
	html := `
		<a href="https://boards.greenhouse.io/Acme/jobs/1">gh</a>
		<a href="https://jobs.lever.co/acme-co?lever-source=site">lever</a>
	`
	found := extractBoardLinks(html)
	assert.Equal(t, "acme", found["greenhouse"])
	assert.Equal(t, "acme-co", found["lever"])
	_, ok := found["ashby"]
	assert.False(t, ok)
}
