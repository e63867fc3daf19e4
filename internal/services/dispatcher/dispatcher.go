// Package dispatcher runs crawl invocations asynchronously on a single
// worker fed by a bounded queue.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// DefaultQueueSize bounds the pending-invocation queue.
const DefaultQueueSize = 64

// invocation is one queued crawl request.
type invocation struct {
	id    string
	api   string
	query string
}

// Dispatcher implements interfaces.Dispatcher. A single worker drains the
// queue, so crawl invocations for different schedule entries never run
// concurrently and never contend for the catalog's rate budget. Enqueue
// never blocks: when the queue is full the invocation is dropped with a
// warning, on the grounds that the next scheduled run will cover it.
type Dispatcher struct {
	crawler interfaces.CrawlerService
	ingest  interfaces.IngestService
	logger  arbor.ILogger

	queue chan invocation
	stop  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// New creates a dispatcher and starts its worker. queueSize falls back to
// DefaultQueueSize when non-positive.
func New(crawler interfaces.CrawlerService, ingest interfaces.IngestService, logger arbor.ILogger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	d := &Dispatcher{
		crawler: crawler,
		ingest:  ingest,
		logger:  logger,
		queue:   make(chan invocation, queueSize),
		stop:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue submits a crawl invocation. Fire-and-forget: the caller learns
// nothing about the outcome, which lands in logs and the vacancy store.
func (d *Dispatcher) Enqueue(api, query string) {
	inv := invocation{
		id:    uuid.New().String(),
		api:   api,
		query: query,
	}

	select {
	case d.queue <- inv:
		d.logger.Info().
			Str("invocation_id", inv.id).
			Str("query", query).
			Msg("Crawl invocation queued")
	default:
		d.logger.Warn().
			Str("query", query).
			Msg("Invocation queue full, dropping crawl request")
	}
}

// Close waits for the in-flight invocation to finish and discards whatever
// is still queued. Queued work is not precious: the next scheduled run
// collects the same vacancies.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		close(d.stop)
	})
	d.wg.Wait()

	if dropped := len(d.queue); dropped > 0 {
		d.logger.Warn().Int("dropped", dropped).Msg("Discarding queued crawl invocations on shutdown")
	}
	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop:
			return
		default:
		}

		select {
		case <-d.stop:
			return
		case inv := <-d.queue:
			d.execute(inv)
		}
	}
}

// execute runs one crawl-then-ingest pass. Failures are terminal for the
// invocation; there are no retries.
func (d *Dispatcher) execute(inv invocation) {
	started := time.Now()
	logger := d.logger

	logger.Info().
		Str("invocation_id", inv.id).
		Str("api", inv.api).
		Str("query", inv.query).
		Msg("Crawl invocation started")

	ctx := context.Background()
	vacancies, err := d.crawler.Crawl(ctx, inv.api, inv.query)
	if err != nil {
		logger.Error().
			Err(err).
			Str("invocation_id", inv.id).
			Str("query", inv.query).
			Msg("Crawl invocation failed")
		return
	}

	added, err := d.ingest.Ingest(ctx, vacancies)
	if err != nil {
		logger.Error().
			Err(err).
			Str("invocation_id", inv.id).
			Str("query", inv.query).
			Msg("Failed to ingest crawl results")
		return
	}

	logger.Info().
		Str("invocation_id", inv.id).
		Str("query", inv.query).
		Int("collected", len(vacancies)).
		Int("added", added).
		Str("duration", time.Since(started).Round(time.Millisecond).String()).
		Msg("Crawl invocation complete")
}

// compile-time interface check
var _ interfaces.Dispatcher = (*Dispatcher)(nil)
