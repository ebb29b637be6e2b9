package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskbridge/marketplace-api/internal/api/metrics"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 5
	defaultBackoff     = 200 * time.Millisecond
	channelBuffer      = 256
)

// RequestIndexer is the store operation the dispatcher retries.
type RequestIndexer interface {
	AppendRequest(ctx context.Context, accountID, requestID string) error
}

// Options tunes the dispatcher. Zero values fall back to defaults.
type Options struct {
	Workers     int
	MaxAttempts int
	Backoff     time.Duration
}

// Dispatcher retries client request-index appends that failed inline. Jobs
// are sharded by client id so appends for one client run in order.
type Dispatcher struct {
	workers     []chan ports.BackrefJob
	indexer     RequestIndexer
	maxAttempts int
	backoff     time.Duration
	log         zerolog.Logger
}

// NewDispatcher creates a Dispatcher; call Start before enqueueing.
func NewDispatcher(indexer RequestIndexer, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	d := &Dispatcher{
		workers:     make([]chan ports.BackrefJob, opts.Workers),
		indexer:     indexer,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.BackrefJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker owning its client. It never blocks; false
// means the shard was full and the job was dropped.
func (d *Dispatcher) Enqueue(job ports.BackrefJob) bool {
	idx := d.shardIndex(job.ClientID)
	select {
	case d.workers[idx] <- job:
		metrics.BackrefQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.BackrefRepairsTotal.WithLabelValues("dropped").Inc()
		d.log.Error().
			Str("client_id", job.ClientID).
			Str("request_id", job.RequestID).
			Int("worker_id", idx).
			Msg("repair queue full, job dropped")
		return false
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.BackrefJob) {
	depth := metrics.BackrefQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.repair(ctx, id, job)
		}
	}
}

func (d *Dispatcher) repair(ctx context.Context, workerID int, job ports.BackrefJob) {
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err = d.indexer.AppendRequest(ctx, job.ClientID, job.RequestID); err == nil {
			metrics.BackrefRepairsTotal.WithLabelValues("repaired").Inc()
			d.log.Info().
				Str("client_id", job.ClientID).
				Str("request_id", job.RequestID).
				Int("attempt", attempt).
				Msg("request indexed on client")
			return
		}
		if attempt == d.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * d.backoff):
		}
	}

	metrics.BackrefRepairsTotal.WithLabelValues("failed").Inc()
	d.log.Error().Err(err).
		Str("client_id", job.ClientID).
		Str("request_id", job.RequestID).
		Int("worker_id", workerID).
		Msg("giving up on request index repair")
}
