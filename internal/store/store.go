// Package store is the PostgreSQL persistence layer for companies, search
// configurations, jobs and pipeline applications. Duplicate-insert safety
// rests on the unique index over jobs.url; everything above this package is
// a best-effort optimization.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/errors"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/store")

type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger.Named("store")}
}

// CompaniesByProfile returns the watchlist of one profile.
func (s *Store) CompaniesByProfile(ctx context.Context, profileID string) ([]models.Company, error) {
	ctx, span := tracer.Start(ctx, "Store.CompaniesByProfile")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, profile_id, name, website, greenhouse_slug, ashby_slug, lever_slug
		 FROM companies
		 WHERE profile_id = $1
		 ORDER BY name`, profileID)
	if err != nil {
		return nil, errors.Internal("querying companies", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.Name, &c.Website,
			&c.GreenhouseSlug, &c.AshbySlug, &c.LeverSlug); err != nil {
			return nil, errors.Internal("scanning company row", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// FilterConfigByProfile loads the profile's single search configuration.
// Absence is a NOT_FOUND domain error; the reconciliation run treats it as
// fatal.
func (s *Store) FilterConfigByProfile(ctx context.Context, profileID string) (*models.FilterConfig, error) {
	ctx, span := tracer.Start(ctx, "Store.FilterConfigByProfile")
	defer span.End()

	var cfg models.FilterConfig
	err := s.pool.QueryRow(ctx,
		`SELECT profile_id, title_keywords, exclude_keywords, locations
		 FROM search_configs
		 WHERE profile_id = $1
		 LIMIT 1`, profileID).
		Scan(&cfg.ProfileID, &cfg.TitleKeywords, &cfg.ExcludeKeywords, &cfg.Locations)
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("no search config for profile", nil)
	}
	if err != nil {
		return nil, errors.Internal("querying search config", err)
	}
	return &cfg, nil
}

// ActiveProfileIDs lists every profile that has a search configuration; used
// by the cron scheduler.
func (s *Store) ActiveProfileIDs(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Store.ActiveProfileIDs")
	defer span.End()

	rows, err := s.pool.Query(ctx, `SELECT DISTINCT profile_id FROM search_configs`)
	if err != nil {
		return nil, errors.Internal("querying profiles", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Internal("scanning profile id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ExistingURLs returns which of the given URLs are already stored.
func (s *Store) ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	ctx, span := tracer.Start(ctx, "Store.ExistingURLs")
	defer span.End()
	span.SetAttributes(telemetry.Int("urls.count", len(urls)))

	if len(urls) == 0 {
		return map[string]struct{}{}, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT url FROM jobs WHERE url = ANY($1)`, urls)
	if err != nil {
		return nil, errors.Internal("querying existing urls", err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, errors.Internal("scanning url", err)
		}
		existing[url] = struct{}{}
	}
	return existing, rows.Err()
}

// InsertBatch inserts one batch of jobs, skipping URLs that a concurrent run
// already inserted. Returns the number of rows actually written.
func (s *Store) InsertBatch(ctx context.Context, jobs []models.StoredJob) (int, error) {
	ctx, span := tracer.Start(ctx, "Store.InsertBatch")
	defer span.End()
	span.SetAttributes(telemetry.Int("batch.size", len(jobs)))

	batch := &pgx.Batch{}
	for _, j := range jobs {
		batch.Queue(
			`INSERT INTO jobs (
				id, company, title, url, location, date_posted, source,
				is_remote, salary_min, salary_max, description,
				seniority_score, is_dismissed
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, false)
			ON CONFLICT (url) DO NOTHING`,
			j.ID, j.Company, j.Title, j.URL, j.Location, j.DatePosted, j.Source,
			j.IsRemote, j.SalaryMin, j.SalaryMax, j.Description, j.SeniorityScore,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if cerr := results.Close(); cerr != nil {
			s.logger.Warn("failed to close batch results", zap.Error(cerr))
		}
	}()

	inserted := 0
	for range jobs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, errors.Internal("inserting job batch", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// UpdateSalaryIfNull performs the conditional enrichment write: salary
// bounds (and description) are only applied while both stored bounds are
// still null, keeping enrichment monotonic under concurrent runs.
func (s *Store) UpdateSalaryIfNull(ctx context.Context, url string, min, max *int, description *string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Store.UpdateSalaryIfNull")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET salary_min = $2,
		     salary_max = $3,
		     description = COALESCE($4, description)
		 WHERE url = $1 AND salary_min IS NULL AND salary_max IS NULL`,
		url, min, max, description)
	if err != nil {
		return false, errors.Internal("updating salary", err)
	}
	return tag.RowsAffected() > 0, nil
}

// JobsMissingSalary selects the backfill candidates: a description to parse
// and no salary bounds yet.
func (s *Store) JobsMissingSalary(ctx context.Context) ([]models.BackfillRow, error) {
	ctx, span := tracer.Start(ctx, "Store.JobsMissingSalary")
	defer span.End()

	rows, err := s.pool.Query(ctx,
		`SELECT id, description
		 FROM jobs
		 WHERE description IS NOT NULL
		   AND salary_min IS NULL
		   AND salary_max IS NULL`)
	if err != nil {
		return nil, errors.Internal("querying backfill candidates", err)
	}
	defer rows.Close()

	var out []models.BackfillRow
	for rows.Next() {
		var r models.BackfillRow
		if err := rows.Scan(&r.ID, &r.Description); err != nil {
			return nil, errors.Internal("scanning backfill row", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateJobSalary writes backfilled salary bounds by job id.
func (s *Store) UpdateJobSalary(ctx context.Context, id string, min, max *int) error {
	ctx, span := tracer.Start(ctx, "Store.UpdateJobSalary")
	defer span.End()

	_, err := s.pool.Exec(ctx,
		`UPDATE jobs SET salary_min = $2, salary_max = $3 WHERE id = $1`,
		id, min, max)
	if err != nil {
		return errors.Internal("updating job salary", err)
	}
	return nil
}

// SetJobDismissed toggles the user-controlled dismissed flag.
func (s *Store) SetJobDismissed(ctx context.Context, id string, dismissed bool) error {
	ctx, span := tracer.Start(ctx, "Store.SetJobDismissed")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET is_dismissed = $2 WHERE id = $1`, id, dismissed)
	if err != nil {
		return errors.Internal("updating dismissed flag", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("job not found", nil)
	}
	return nil
}

// SetCompanyBoards writes detected provider slugs back onto a company
// record. Nil slugs leave the stored value untouched.
func (s *Store) SetCompanyBoards(ctx context.Context, companyID string, boards map[string]*string) error {
	ctx, span := tracer.Start(ctx, "Store.SetCompanyBoards")
	defer span.End()

	tag, err := s.pool.Exec(ctx,
		`UPDATE companies
		 SET greenhouse_slug = COALESCE($2, greenhouse_slug),
		     ashby_slug = COALESCE($3, ashby_slug),
		     lever_slug = COALESCE($4, lever_slug)
		 WHERE id = $1`,
		companyID, boards["greenhouse"], boards["ashby"], boards["lever"])
	if err != nil {
		return errors.Internal("updating company boards", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("company not found", nil)
	}
	return nil
}

// CreateSavedApplication writes the initial "saved" pipeline row for a job.
// Saving the same job twice for a profile is a no-op.
func (s *Store) CreateSavedApplication(ctx context.Context, jobID, profileID string) (*models.Application, error) {
	ctx, span := tracer.Start(ctx, "Store.CreateSavedApplication")
	defer span.End()

	var app models.Application
	err := s.pool.QueryRow(ctx,
		`INSERT INTO applications (job_id, profile_id, stage)
		 VALUES ($1, $2, 'saved')
		 ON CONFLICT (job_id, profile_id) DO UPDATE SET job_id = EXCLUDED.job_id
		 RETURNING id, job_id, profile_id, stage, created_at`,
		jobID, profileID).
		Scan(&app.ID, &app.JobID, &app.ProfileID, &app.Stage, &app.CreatedAt)
	if err != nil {
		return nil, errors.Internal("creating application", err)
	}
	return &app, nil
}
