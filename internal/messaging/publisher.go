package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/mrleolava/job-search-command-center/internal/config"
	"github.com/mrleolava/job-search-command-center/internal/errors"
	"github.com/mrleolava/job-search-command-center/internal/models"
	"github.com/mrleolava/job-search-command-center/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobsearch/messaging")

const (
	// JobsSubject carries every job newly inserted by a reconciliation run;
	// downstream consumers (notifiers, digests) subscribe here.
	JobsSubject = "jobs.new"
)

type Publisher interface {
	PublishJob(ctx context.Context, job models.StoredJob) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger, cfg *config.Config) (Publisher, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("job-search-command-center"),
		nats.ReconnectWait(time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	conn, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, errors.Unavailable("connecting to NATS", err)
	}

	return &natsPublisher{
		conn:   conn,
		logger: logger.Named("messaging"),
	}, nil
}

func (p *natsPublisher) PublishJob(ctx context.Context, job models.StoredJob) error {
	_, span := tracer.Start(ctx, "PublishJob")
	defer span.End()

	data, err := json.Marshal(job)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling job", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", JobsSubject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(JobsSubject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish job",
			zap.String("id", job.ID),
			zap.Error(err))
		return errors.Internal("publishing to NATS", err)
	}

	p.logger.Debug("published job",
		zap.String("id", job.ID),
		zap.String("subject", JobsSubject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
