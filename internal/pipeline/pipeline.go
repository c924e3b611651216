package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
	"github.com/couchcryptid/collision-data-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Source loads every raw record of a run.
type Source interface {
	Load(ctx context.Context) ([]domain.RawRecord, error)
}

// Normalizer converts one raw record. It never fails; undecodable input is
// passed through.
type Normalizer interface {
	Normalize(ctx context.Context, raw domain.RawRecord) domain.Record
}

// Sink receives the complete, ordered output of a run.
type Sink interface {
	Write(ctx context.Context, records []domain.Record) error
}

// Result summarizes a finished run.
type Result struct {
	Loaded      int
	Normalized  int
	PassThrough int
	Geocoded    int
	Duration    time.Duration
}

// Pipeline runs load, normalize, and write once over a whole input.
type Pipeline struct {
	source     Source
	normalizer Normalizer
	sinks      []Sink
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock

	ready     atomic.Bool
	processed atomic.Int64
	total     atomic.Int64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used to time runs.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) {
		p.clock = c
	}
}

// New creates a Pipeline. Sinks are written in the order given.
func New(source Source, normalizer Normalizer, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		normalizer: normalizer,
		sinks:      sinks,
		logger:     logger,
		metrics:    metrics,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the run has normalized at least one record.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not normalized any records yet")
	}
	return nil
}

// Progress reports how many of the loaded records have been normalized.
func (p *Pipeline) Progress() (processed, total int) {
	return int(p.processed.Load()), int(p.total.Load())
}

// Run loads the input, normalizes records strictly one at a time in input
// order, then hands the full output to each sink. Cancellation aborts the
// run before anything is written.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	start := p.clock.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	raws, err := p.source.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load input: %w", err)
	}

	res := Result{Loaded: len(raws)}
	p.total.Store(int64(len(raws)))
	p.metrics.RecordsLoaded.Add(float64(len(raws)))
	p.logger.Info("pipeline started", "records", len(raws))

	out := make([]domain.Record, 0, len(raws))
	for _, raw := range raws {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err, "processed", len(out))
			return res, err
		}

		rec := p.normalizer.Normalize(ctx, raw)
		out = append(out, rec)
		p.count(&res, rec)

		p.processed.Add(1)
		p.ready.Store(true)
	}

	// A cancellation during the last record's geocoding leaves it without
	// coordinates, so the run still counts as aborted.
	if err := ctx.Err(); err != nil {
		p.logger.Info("pipeline stopping", "reason", err, "processed", len(out))
		return res, err
	}

	for _, sink := range p.sinks {
		if err := sink.Write(ctx, out); err != nil {
			return res, fmt.Errorf("write output: %w", err)
		}
	}

	res.Duration = p.clock.Since(start)
	p.metrics.RunDuration.Observe(res.Duration.Seconds())
	p.logger.Info("pipeline finished",
		"records", res.Loaded,
		"normalized", res.Normalized,
		"passthrough", res.PassThrough,
		"geocoded", res.Geocoded,
		"duration", res.Duration,
	)
	return res, nil
}

func (p *Pipeline) count(res *Result, rec domain.Record) {
	shape := rec.Shape()
	p.metrics.RecordsNormalized.WithLabelValues(shape).Inc()
	p.logger.Debug("record processed", "id", rec.ID, "shape", shape)

	if rec.Normalized == nil {
		res.PassThrough++
		return
	}
	res.Normalized++
	if rec.Normalized.Lat != nil {
		res.Geocoded++
		p.metrics.RecordsGeocoded.Inc()
	}
}
