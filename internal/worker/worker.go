// Package worker implements the producer/consumer control loop (spec.md
// §4.5): one producer enumerates enabled configs, filters complete and
// leased jobs, and pushes work into a bounded channel; N consumers, gated
// by a semaphore, pull jobs, fetch candles, invoke kernels, and stream
// batches to the gateway.
//
// Grounded on internal/analytics/concurrency/worker_pool.go's
// Start/Shutdown/WaitGroup shape, generalised from a generic Task/Result
// pool into the spec's fixed Job pipeline, and on the semaphore-gated
// fan-out pattern the teacher used to bound concurrent downstream work.
package worker

import (
	"context"
	"sync"
	"time"

	"indicatorworker/internal/completeness"
	"indicatorworker/internal/domain"
	"indicatorworker/internal/gateway"
	"indicatorworker/internal/kernels"
	"indicatorworker/internal/lease"
	"indicatorworker/pkg/log"
	"indicatorworker/pkg/workerrors"

	"golang.org/x/time/rate"
)

// ChannelCapacity is the bounded job channel size (spec.md §4.5): a full
// channel backpressures the producer, the intended rate limiter.
const ChannelCapacity = 1000

// DefaultBatchSize is the default chunk size streamed to the gateway.
const DefaultBatchSize = 1000

// DefaultSweepInterval is the producer's sweep cadence.
const DefaultSweepInterval = 60 * time.Second

// retryDelay is the pause after a failed enumerate-enabled-configs call
// (spec.md §4.5 producer loop step 3).
const retryDelay = 5 * time.Second

// Config configures a Worker.
type Config struct {
	Concurrency          int
	BatchSize            int
	SweepInterval         time.Duration
	CompletenessTTL       time.Duration
	FixedFreshnessWindow  bool // use completeness.FixedWindow instead of WindowFor
}

// Worker owns the bounded job channel, the downstream concurrency
// semaphore, and references to the gateway, completeness cache, lease, and
// kernel registry it coordinates (spec.md §5: "the completeness cache is
// owned by the worker, shared by reference... across producer and
// consumers").
type Worker struct {
	cfg      Config
	gw       *gateway.Gateway
	cache    *completeness.Cache
	lease    *lease.Lease
	registry *kernels.Registry

	jobs      chan domain.Job
	semaphore chan struct{}
	limiter   *rate.Limiter

	lastRebuild time.Time
	wg          sync.WaitGroup
}

// New builds a Worker. A Concurrency <= 0 defaults to 1 (cmd/worker
// resolves the actual hardware-thread default before calling New).
func New(cfg Config, gw *gateway.Gateway, cache *completeness.Cache, ls *lease.Lease, registry *kernels.Registry) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.CompletenessTTL <= 0 {
		cfg.CompletenessTTL = completeness.DefaultTTL
	}
	return &Worker{
		cfg:       cfg,
		gw:        gw,
		cache:     cache,
		lease:     ls,
		registry:  registry,
		jobs:      make(chan domain.Job, ChannelCapacity),
		semaphore: make(chan struct{}, cfg.Concurrency),
		limiter:   rate.NewLimiter(rate.Every(cfg.SweepInterval), 1),
	}
}

// Run starts the producer and the consumer pool and blocks until ctx is
// cancelled. On cancellation the producer stops enqueuing, consumers
// finish their current Job, and Run returns once all consumers have
// drained (spec.md §5 shutdown semantics).
func (w *Worker) Run(ctx context.Context) {
	w.wg.Add(w.cfg.Concurrency)
	for i := 0; i < w.cfg.Concurrency; i++ {
		go func(id int) {
			defer w.wg.Done()
			w.consume(ctx, id)
		}(i)
	}

	w.produce(ctx)

	close(w.jobs)
	w.wg.Wait()
	log.Stage("worker", "shutdown complete", nil)
}

// produce runs the sweep loop until ctx is cancelled (spec.md §4.5
// producer loop).
func (w *Worker) produce(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	if time.Since(w.lastRebuild) > w.cfg.CompletenessTTL {
		w.rebuildCache(ctx)
	}

	configs, err := w.gw.EnumerateEnabledConfigs(ctx)
	if err != nil {
		log.StageError("producer", "enumerate enabled configs failed, retrying", err, nil)
		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
		}
		return
	}

	enqueued := 0
	for _, cfg := range configs {
		fp := cfg.Fingerprint()
		if rec, ok := w.cache.Get(fp.Key()); ok && rec.Complete {
			continue
		}
		exists, err := w.lease.Exists(ctx, fp, cfg.Kind)
		if err != nil {
			log.WithFingerprintWarn("producer", fp.Key(), "lease check failed, skipping this sweep", nil)
			continue
		}
		if exists {
			continue
		}
		job := domain.Job{Fingerprint: fp, Kind: cfg.Kind}
		select {
		case w.jobs <- job:
		case <-ctx.Done():
			return
		}
		if err := w.lease.Acquire(ctx, fp, cfg.Kind); err != nil {
			log.WithFingerprintWarn("producer", fp.Key(), "lease acquire failed after enqueue", nil)
		}
		enqueued++
	}
	log.Stage("producer", "sweep complete", log.Fields{"configs": len(configs), "enqueued": enqueued})
}

func (w *Worker) rebuildCache(ctx context.Context) {
	configs, err := w.gw.EnumerateEnabledConfigs(ctx)
	if err != nil {
		log.StageWarn("producer", "cache rebuild skipped: enumerate failed", log.Fields{"error": err.Error()})
		return
	}
	byFP := make(map[string]domain.Fingerprint, len(configs))
	keys := make([]string, 0, len(configs))
	for _, cfg := range configs {
		fp := cfg.Fingerprint()
		key := fp.Key()
		byFP[key] = fp
		keys = append(keys, key)
	}
	w.cache.Rebuild(keys, func(key string) (domain.CompletenessRecord, error) {
		fp := byFP[key]
		rng, err := w.gw.ReadCandleRange(ctx, fp.Symbol, fp.Interval)
		if err != nil {
			return domain.CompletenessRecord{Fingerprint: fp}, nil
		}
		lastCalc, count, err := w.gw.ReadCompleteness(ctx, fp)
		if err != nil {
			return domain.CompletenessRecord{}, err
		}
		window := completeness.FixedWindow
		if !w.cfg.FixedFreshnessWindow {
			window = completeness.WindowFor(fp.Interval, intervalDuration(fp.Interval))
		}
		return completeness.Derive(fp, rng, lastCalc, count, window), nil
	})
	w.lastRebuild = time.Now()
	log.Stage("completeness", "cache rebuilt", log.Fields{"fingerprints": len(keys)})
}

// consume is one consumer's main loop (spec.md §4.5 consumer pool).
func (w *Worker) consume(ctx context.Context, id int) {
	for job := range w.jobs {
		select {
		case w.semaphore <- struct{}{}:
		case <-ctx.Done():
			return
		}
		w.process(ctx, job)
		<-w.semaphore
	}
}

// ForceProcess runs one job through the same read-compute-stream pipeline
// as a regular consumer, but outside the sweep loop: it never consults the
// completeness cache or the in-flight lease, and its lease Release calls at
// the end are no-ops against a key nothing ever Acquired. Used by
// cmd/worker's backfill subcommand (spec.md §6 CLI surface).
func (w *Worker) ForceProcess(ctx context.Context, job domain.Job) {
	w.process(ctx, job)
}

func (w *Worker) process(ctx context.Context, job domain.Job) {
	fp := job.Fingerprint
	series, err := w.gw.ReadCandleSeries(ctx, fp.Symbol, fp.Interval)
	if err != nil {
		log.WithFingerprintError("consumer", fp.Key(), "read candle series failed", err, nil)
		w.lease.Release(ctx, fp, job.Kind)
		return
	}
	if series.Empty() {
		w.commitEmpty(ctx, fp, job.Kind)
		return
	}

	points, err := w.registry.Compute(fp.Name, series, fp.Params)
	if err != nil {
		w.handleKernelError(ctx, fp, job.Kind, series.Len(), err)
		return
	}

	if err := w.streamBatches(ctx, fp, job.Kind, series, points); err != nil {
		log.WithFingerprintError("consumer", fp.Key(), "upsert batch failed", err, nil)
		w.lease.Release(ctx, fp, job.Kind)
		return
	}

	w.lease.Release(ctx, fp, job.Kind)
	w.recomputeCompleteness(ctx, fp)
}

func (w *Worker) handleKernelError(ctx context.Context, fp domain.Fingerprint, kind domain.IndicatorKind, n int, err error) {
	k := workerrors.KindOf(err)
	switch k {
	case workerrors.InsufficientData, workerrors.InvalidParameter:
		log.WithFingerprintWarn("consumer", fp.Key(), "kernel declined, committing empty", log.Fields{"reason": string(k)})
		w.commitEmpty(ctx, fp, kind)
	default:
		log.WithFingerprintError("consumer", fp.Key(), "kernel failed", err, log.Fields{"candles": n})
		w.lease.Release(ctx, fp, kind)
	}
}

// commitEmpty records a zero-count completeness entry and releases the
// lease without writing any points (spec.md §4.5 / §7: InsufficientData
// and empty series are not failures).
func (w *Worker) commitEmpty(ctx context.Context, fp domain.Fingerprint, kind domain.IndicatorKind) {
	w.cache.Upsert(fp.Key(), domain.CompletenessRecord{Fingerprint: fp, DataCount: 0})
	w.lease.Release(ctx, fp, kind)
}

func (w *Worker) streamBatches(ctx context.Context, fp domain.Fingerprint, kind domain.IndicatorKind, series *domain.CandleSeries, points []kernels.Point) error {
	batch := make([]domain.CalculatedIndicatorPoint, 0, w.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.gw.UpsertCalculatedBatch(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}
	for _, p := range points {
		if p.Index < 0 || p.Index >= series.Len() {
			continue
		}
		batch = append(batch, domain.CalculatedIndicatorPoint{
			Symbol:   fp.Symbol,
			Interval: fp.Interval,
			Kind:     kind,
			Name:     fp.Name,
			Params:   fp.Params,
			Time:     series.OpenTime[p.Index],
			Value:    p.Value,
		})
		if len(batch) >= w.cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (w *Worker) recomputeCompleteness(ctx context.Context, fp domain.Fingerprint) {
	rng, err := w.gw.ReadCandleRange(ctx, fp.Symbol, fp.Interval)
	if err != nil {
		return
	}
	lastCalc, count, err := w.gw.ReadCompleteness(ctx, fp)
	if err != nil {
		log.WithFingerprintWarn("completeness", fp.Key(), "recompute after commit failed", nil)
		return
	}
	window := completeness.FixedWindow
	if !w.cfg.FixedFreshnessWindow {
		window = completeness.WindowFor(fp.Interval, intervalDuration(fp.Interval))
	}
	rec := completeness.Derive(fp, rng, lastCalc, count, window)
	w.cache.Upsert(fp.Key(), rec)
}

// intervalDuration parses a candle interval string ("1m", "5m", "1h",
// "1d") into a time.Duration for WindowFor; unparseable intervals fall
// back to FixedWindow via WindowFor's own zero-duration guard.
func intervalDuration(interval string) time.Duration {
	d, err := time.ParseDuration(normalizeInterval(interval))
	if err != nil {
		return 0
	}
	return d
}

func normalizeInterval(interval string) string {
	if len(interval) == 0 {
		return interval
	}
	switch interval[len(interval)-1] {
	case 'd':
		return interval[:len(interval)-1] + "24h"
	case 'w':
		return interval[:len(interval)-1] + "168h"
	default:
		return interval
	}
}
