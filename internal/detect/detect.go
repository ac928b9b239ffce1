// Package detect guesses which ATS providers host a company's job board.
// Candidate slugs derived from the company name and website are validated
// in parallel against every provider's existence check; a careers-page
// scrape is the fallback when no candidate validates. Failures here are
// silent: detection just yields fewer results.
package detect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/cache"
	"github.com/mrleolava/job-search-command-center/internal/provider"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/detect")

// Detector probes provider boards for a company. It holds the same adapter
// set the reconciliation engine fetches with.
type Detector struct {
	adapters []provider.Adapter
	logger   *zap.Logger
	cache    cache.Cache
	scraper  *careerPageScraper
	timeout  time.Duration
}

func New(adapters []provider.Adapter, logger *zap.Logger, c cache.Cache, timeout time.Duration) *Detector {
	return &Detector{
		adapters: adapters,
		logger:   logger.Named("detect"),
		cache:    c,
		scraper:  newCareerPageScraper(logger, timeout),
		timeout:  timeout,
	}
}

// Detect returns the validated slug per provider id, nil for providers where
// nothing validated.
func (d *Detector) Detect(ctx context.Context, name string, website *string) map[string]*string {
	ctx, span := tracer.Start(ctx, "Detector.Detect")
	defer span.End()
	span.SetAttributes(telemetry.String("company.name", name))

	candidates := CandidateSlugs(name, website)
	d.logger.Debug("generated slug candidates",
		zap.String("company", name),
		zap.Strings("candidates", candidates))

	detected := d.checkCandidates(ctx, candidates)

	// Careers-page fallback for providers still unresolved.
	if website != nil && *website != "" && d.missingAny(detected) {
		scraped := d.scraper.scan(ctx, *website)
		for _, a := range d.adapters {
			if detected[a.ID()] != nil {
				continue
			}
			slug, ok := scraped[a.ID()]
			if !ok {
				continue
			}
			// Scraped slugs are only trusted once the live check confirms
			// them.
			if d.checkCached(ctx, a, slug) {
				s := slug
				detected[a.ID()] = &s
			}
		}
	}

	for id, slug := range detected {
		if slug != nil {
			d.logger.Info("detected board",
				zap.String("company", name),
				zap.String("provider", id),
				zap.String("slug", *slug))
		}
	}
	return detected
}

// checkCandidates fans out every (candidate, provider) pair concurrently and
// keeps, per provider, the first candidate in generation order that
// validates.
func (d *Detector) checkCandidates(ctx context.Context, candidates []string) map[string]*string {
	results := make([][]bool, len(d.adapters))
	for i := range results {
		results[i] = make([]bool, len(candidates))
	}

	var wg sync.WaitGroup
	for ai, a := range d.adapters {
		for ci, slug := range candidates {
			wg.Add(1)
			go func(ai, ci int, a provider.Adapter, slug string) {
				defer wg.Done()
				results[ai][ci] = d.checkCached(ctx, a, slug)
			}(ai, ci, a, slug)
		}
	}
	wg.Wait()

	detected := make(map[string]*string, len(d.adapters))
	for ai, a := range d.adapters {
		detected[a.ID()] = nil
		for ci, ok := range results[ai] {
			if ok {
				slug := candidates[ci]
				detected[a.ID()] = &slug
				break
			}
		}
	}
	return detected
}

// checkCached runs one existence check behind the shared cache so repeated
// onboarding of similar names does not hammer the providers.
func (d *Detector) checkCached(ctx context.Context, a provider.Adapter, slug string) bool {
	key := fmt.Sprintf("detect:%s:%s", a.ID(), slug)

	var cached string
	if err := d.cache.Get(ctx, key, &cached); err == nil {
		return cached == "1"
	}

	checkCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	ok := a.CheckBoard(checkCtx, slug)

	val := "0"
	if ok {
		val = "1"
	}
	if err := d.cache.Set(ctx, key, val, 0); err != nil {
		d.logger.Debug("failed to cache board check", zap.String("key", key), zap.Error(err))
	}
	return ok
}

func (d *Detector) missingAny(detected map[string]*string) bool {
	for _, slug := range detected {
		if slug == nil {
			return true
		}
	}
	return false
}
