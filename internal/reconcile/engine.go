// Package reconcile orchestrates the ingestion pipeline: fan out to
// provider adapters, filter, score, deduplicate against the store, insert
// new jobs and backfill enrichment on old ones. A run is idempotent: it can
// be repeated arbitrarily often against a growing upstream without
// duplicating rows or regressing previously enriched ones.
package reconcile

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/analytics"
	"github.com/mrleolava/job-search-command-center/internal/errors"
	"github.com/mrleolava/job-search-command-center/internal/filter"
	"github.com/mrleolava/job-search-command-center/internal/messaging"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/provider"
	"github.com/mrleolava/job-search-command-center/internal/salary"
	"github.com/mrleolava/job-search-command-center/internal/seniority"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/reconcile")

// State names the pipeline stage a run is currently in. No state is
// resumable; a run always drives back to Idle.
type State string

const (
	StateIdle              State = "idle"
	StateFetchingCompanies State = "fetching_companies"
	StateFetchingPostings  State = "fetching_postings"
	StateFiltering         State = "filtering"
	StateScoring           State = "scoring"
	StateDeduplicating     State = "deduplicating"
	StateWriting           State = "writing"
	StateBackfilling       State = "backfilling"
)

// insertBatchSize bounds the request size of a single insert.
const insertBatchSize = 50

// Store is the persistence contract the engine consumes.
type Store interface {
	CompaniesByProfile(ctx context.Context, profileID string) ([]models.Company, error)
	FilterConfigByProfile(ctx context.Context, profileID string) (*models.FilterConfig, error)
	ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, jobs []models.StoredJob) (int, error)
	UpdateSalaryIfNull(ctx context.Context, url string, min, max *int, description *string) (bool, error)
	JobsMissingSalary(ctx context.Context) ([]models.BackfillRow, error)
	UpdateJobSalary(ctx context.Context, id string, min, max *int) error
}

type Engine struct {
	store     Store
	adapters  []provider.Adapter
	publisher messaging.Publisher
	recorder  analytics.Recorder
	logger    *zap.Logger
	workers   int

	mu    sync.Mutex
	state State
}

func New(store Store, adapters []provider.Adapter, publisher messaging.Publisher,
	recorder analytics.Recorder, logger *zap.Logger, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		store:     store,
		adapters:  adapters,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger.Named("reconcile"),
		workers:   workers,
		state:     StateIdle,
	}
}

// State returns the stage the engine is currently in.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.logger.Debug("pipeline state", zap.String("state", string(s)))
}

// Run executes one full reconciliation for a profile. Only the company list
// and filter configuration loads are fatal; every other failure is isolated,
// counted, and the run completes over whatever succeeded.
func (e *Engine) Run(ctx context.Context, profileID string) (*models.Report, error) {
	ctx, span := tracer.Start(ctx, "Engine.Run")
	defer span.End()
	span.SetAttributes(telemetry.String("profile.id", profileID))

	defer e.setState(StateIdle)
	report := &models.Report{ProfileID: profileID}

	e.setState(StateFetchingCompanies)
	companies, err := e.store.CompaniesByProfile(ctx, profileID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("loading companies", err)
	}
	cfg, err := e.store.FilterConfigByProfile(ctx, profileID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	report.Companies = len(companies)

	e.setState(StateFetchingPostings)
	raw, fetchErrors := e.fetchAll(ctx, companies)
	report.Fetched = len(raw)
	report.FetchErrors = fetchErrors
	e.logger.Info("fetched postings",
		zap.Int("companies", len(companies)),
		zap.Int("postings", len(raw)),
		zap.Int("fetch_errors", fetchErrors))

	e.setState(StateFiltering)
	eng := filter.New(*cfg)
	filtered := make([]models.RawPosting, 0, len(raw))
	for _, p := range raw {
		if eng.Match(p) {
			filtered = append(filtered, p)
		}
	}
	report.Filtered = len(filtered)

	e.setState(StateScoring)
	survivors := make([]models.StoredJob, 0, len(filtered))
	for _, p := range filtered {
		score := seniority.Score(p.Title, p.Description)
		if score == 0 {
			continue
		}
		survivors = append(survivors, newStoredJob(p, score))
	}
	report.AfterSeniority = len(survivors)

	e.setState(StateDeduplicating)
	urls := make([]string, 0, len(survivors))
	for _, j := range survivors {
		urls = append(urls, j.URL)
	}
	existing, err := e.store.ExistingURLs(ctx, urls)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("checking existing jobs", err)
	}

	var present, fresh []models.StoredJob
	for _, j := range survivors {
		if _, ok := existing[j.URL]; ok {
			present = append(present, j)
		} else {
			fresh = append(fresh, j)
		}
	}
	report.AlreadyPresent = len(present)

	e.setState(StateWriting)
	report.SalaryUpdated = e.updateSalaries(ctx, present)
	report.Inserted = e.insertNew(ctx, fresh)

	e.setState(StateBackfilling)
	report.Backfilled = e.backfill(ctx)

	e.logSummary(fresh, report)
	if err := e.recorder.RecordRun(ctx, *report); err != nil {
		e.logger.Warn("failed to record run report", zap.Error(err))
	}
	return report, nil
}

// fetchAll fans company fetches out over a bounded worker pool. A failing
// board yields nothing and bumps the error count; companies without any
// configured provider slug are skipped silently.
func (e *Engine) fetchAll(ctx context.Context, companies []models.Company) ([]models.RawPosting, int) {
	var (
		mu       sync.Mutex
		all      []models.RawPosting
		failures int32
		wg       sync.WaitGroup
	)

	companyChan := make(chan models.Company)
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for co := range companyChan {
				adapter, slug := e.pickAdapter(co)
				if adapter == nil {
					e.logger.Debug("skipping company without provider slug",
						zap.String("company", co.Name))
					continue
				}
				postings, err := adapter.Fetch(ctx, co.Name, slug)
				if err != nil {
					atomic.AddInt32(&failures, 1)
					e.logger.Warn("board fetch failed",
						zap.String("company", co.Name),
						zap.String("provider", adapter.ID()),
						zap.String("slug", slug),
						zap.Error(err))
					continue
				}
				mu.Lock()
				all = append(all, postings...)
				mu.Unlock()
			}
		}()
	}

	for _, co := range companies {
		companyChan <- co
	}
	close(companyChan)
	wg.Wait()

	return all, int(atomic.LoadInt32(&failures))
}

// pickAdapter returns the first adapter (in precedence order) the company
// has a slug for.
func (e *Engine) pickAdapter(co models.Company) (provider.Adapter, string) {
	for _, a := range e.adapters {
		if slug := provider.Slug(a, co); slug != nil && *slug != "" {
			return a, *slug
		}
	}
	return nil, ""
}

// updateSalaries backfills salary onto already-stored jobs the current fetch
// has data for. The write is conditional on the stored salary still being
// null; enrichment never overwrites an existing value.
func (e *Engine) updateSalaries(ctx context.Context, present []models.StoredJob) int {
	updated := 0
	for _, j := range present {
		if j.SalaryMin == nil && j.SalaryMax == nil {
			continue
		}
		ok, err := e.store.UpdateSalaryIfNull(ctx, j.URL, j.SalaryMin, j.SalaryMax, j.Description)
		if err != nil {
			e.logger.Warn("salary update failed",
				zap.String("url", j.URL),
				zap.Error(err))
			continue
		}
		if ok {
			updated++
		}
	}
	return updated
}

// insertNew writes fresh jobs in bounded batches. Batch failures are
// independent; a failed batch never blocks the next one.
func (e *Engine) insertNew(ctx context.Context, fresh []models.StoredJob) int {
	inserted := 0
	for start := 0; start < len(fresh); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(fresh) {
			end = len(fresh)
		}
		batch := fresh[start:end]

		n, err := e.store.InsertBatch(ctx, batch)
		inserted += n
		if err != nil {
			e.logger.Warn("insert batch failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			continue
		}

		for _, j := range batch {
			if perr := e.publisher.PublishJob(ctx, j); perr != nil {
				e.logger.Warn("failed to publish inserted job",
					zap.String("id", j.ID),
					zap.Error(perr))
			}
		}
	}
	e.logger.Info("insert pass complete",
		zap.Int("attempted", len(fresh)),
		zap.Int("inserted", inserted))
	return inserted
}

// backfill re-runs salary extraction over stored jobs that have a
// description but no salary yet. It always runs, even when the current
// fetch produced no survivors.
func (e *Engine) backfill(ctx context.Context) int {
	rows, err := e.store.JobsMissingSalary(ctx)
	if err != nil {
		e.logger.Warn("backfill scan failed", zap.Error(err))
		return 0
	}

	backfilled := 0
	for _, row := range rows {
		rng := salary.Extract(&row.Description)
		if rng.Empty() {
			continue
		}
		if err := e.store.UpdateJobSalary(ctx, row.ID, rng.Min, rng.Max); err != nil {
			e.logger.Warn("backfill update failed",
				zap.String("id", row.ID),
				zap.Error(err))
			continue
		}
		backfilled++
	}
	return backfilled
}

func (e *Engine) logSummary(fresh []models.StoredJob, report *models.Report) {
	byCompany := make(map[string]int)
	for _, j := range fresh {
		byCompany[j.Company]++
	}
	for company, count := range byCompany {
		e.logger.Info("new jobs for company",
			zap.String("company", company),
			zap.Int("count", count))
	}
	e.logger.Info("reconciliation complete",
		zap.String("profile_id", report.ProfileID),
		zap.Int("fetched", report.Fetched),
		zap.Int("filtered", report.Filtered),
		zap.Int("after_seniority", report.AfterSeniority),
		zap.Int("already_present", report.AlreadyPresent),
		zap.Int("inserted", report.Inserted),
		zap.Int("salary_updated", report.SalaryUpdated),
		zap.Int("backfilled", report.Backfilled))
}

// newStoredJob freezes a scored posting into its persistent shape. The job
// id is derived from the canonical URL so re-runs produce the same identity.
func newStoredJob(p models.RawPosting, score int) models.StoredJob {
	return models.StoredJob{
		ID:             uuid.NewSHA1(uuid.NameSpaceURL, []byte(p.URL)).String(),
		Company:        p.Company,
		Title:          p.Title,
		URL:            p.URL,
		Location:       p.Location,
		DatePosted:     p.DatePosted,
		Source:         p.Source,
		IsRemote:       p.IsRemote,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		Description:    p.Description,
		SeniorityScore: &score,
	}
}
