package detect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// boardLinkPatterns match provider board links embedded in a careers page.
// The captured group is the slug.
var boardLinkPatterns = map[string]*regexp.Regexp{
	"greenhouse": regexp.MustCompile(`(?:boards\.greenhouse\.io|job-boards\.greenhouse\.io)/([a-zA-Z0-9_-]+)`),
	"lever":      regexp.MustCompile(`(?:jobs\.lever\.co|lever\.co)/([a-zA-Z0-9_-]+)`),
	"ashby":      regexp.MustCompile(`(?:jobs\.ashbyhq\.com|app\.ashbyhq\.com/posting-api/job-board)/([a-zA-Z0-9_-]+)`),
}

// careerPagePaths are tried in order; scanning stops at the first page that
// yields any provider link.
var careerPagePaths = []string{"", "/careers", "/jobs"}

const scrapeUserAgent = "Mozilla/5.0 (compatible; JobSearchBot/1.0)"

type careerPageScraper struct {
	client *http.Client
	logger *zap.Logger
}

func newCareerPageScraper(logger *zap.Logger, timeout time.Duration) *careerPageScraper {
	return &careerPageScraper{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// scan fetches the site's root, /careers and /jobs pages and regex-scans the
// HTML for provider board links. All failures degrade to an empty result.
func (s *careerPageScraper) scan(ctx context.Context, website string) map[string]string {
	base := strings.TrimSuffix(website, "/")
	if !strings.HasPrefix(base, "http") {
		base = "https://" + base
	}

	for _, path := range careerPagePaths {
		html, err := s.fetchPage(ctx, base+path)
		if err != nil {
			continue
		}
		if found := extractBoardLinks(html); len(found) > 0 {
			return found
		}
	}
	return nil
}

func (s *careerPageScraper) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Debug("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func extractBoardLinks(html string) map[string]string {
	found := make(map[string]string)
	for id, pattern := range boardLinkPatterns {
		if m := pattern.FindStringSubmatch(html); m != nil {
			found[id] = strings.ToLower(m[1])
		}
	}
	return found
}
