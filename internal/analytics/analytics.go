// Package analytics records reconciliation run reports in ClickHouse. The
// table is append-only; the analytics views aggregate it by profile and day.
// Recording is best-effort and never affects a run's outcome.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/config"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/analytics")

// Recorder sinks per-run stage counts.
type Recorder interface {
	RecordRun(ctx context.Context, report models.Report) error
}

// New returns the ClickHouse-backed recorder, or a no-op one when no DSN is
// configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Recorder, error) {
	if cfg.ClickHouseDSN == "" {
		logger.Info("analytics sink disabled, no ClickHouse DSN configured")
		return noopRecorder{}, nil
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{cfg.ClickHouseDSN},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUsername,
			Password: cfg.ClickHousePassword,
		},
		DialTimeout: time.Second * 30,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	r := &clickhouseRecorder{conn: conn, logger: logger.Named("analytics")}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

type clickhouseRecorder struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func (r *clickhouseRecorder) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS run_reports (
			profile_id String,
			companies Int32,
			fetched Int32,
			fetch_errors Int32,
			filtered Int32,
			after_seniority Int32,
			already_present Int32,
			inserted Int32,
			salary_updated Int32,
			backfilled Int32,
			ran_at DateTime
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ran_at)
		ORDER BY (profile_id, ran_at)
	`
	if err := r.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create run_reports table: %w", err)
	}
	return nil
}

func (r *clickhouseRecorder) RecordRun(ctx context.Context, report models.Report) error {
	ctx, span := tracer.Start(ctx, "RecordRun")
	defer span.End()
	span.SetAttributes(telemetry.String("profile.id", report.ProfileID))

	query := `
		INSERT INTO run_reports (
			profile_id, companies, fetched, fetch_errors, filtered,
			after_seniority, already_present, inserted, salary_updated,
			backfilled, ran_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, now())
	`

	if err := r.conn.Exec(ctx, query,
		report.ProfileID,
		int32(report.Companies),
		int32(report.Fetched),
		int32(report.FetchErrors),
		int32(report.Filtered),
		int32(report.AfterSeniority),
		int32(report.AlreadyPresent),
		int32(report.Inserted),
		int32(report.SalaryUpdated),
		int32(report.Backfilled),
	); err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert run report: %w", err)
	}

	r.logger.Debug("recorded run report", zap.String("profile_id", report.ProfileID))
	return nil
}

type noopRecorder struct{}

func (noopRecorder) RecordRun(context.Context, models.Report) error { return nil }
