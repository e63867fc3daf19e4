package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/models"
)

// scriptedCrawler returns a fixed batch per query and records invocations.
type scriptedCrawler struct {
	mu      sync.Mutex
	crawled []string
	results map[string][]*models.Vacancy
	err     error
	started chan struct{}
	block   chan struct{}
}

func (c *scriptedCrawler) Crawl(ctx context.Context, api, query string) ([]*models.Vacancy, error) {
	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.crawled = append(c.crawled, api+"/"+query)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.results[query], nil
}

func (c *scriptedCrawler) invocations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.crawled...)
}

// countingIngest records how many batches and records it received.
type countingIngest struct {
	mu      sync.Mutex
	batches int
	records int
}

func (i *countingIngest) Ingest(ctx context.Context, vacancies []*models.Vacancy) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.batches++
	i.records += len(vacancies)
	return len(vacancies), nil
}

func (i *countingIngest) stats() (int, int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.batches, i.records
}

func waitUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestEnqueueRunsCrawlAndIngest(t *testing.T) {
	crawler := &scriptedCrawler{
		results: map[string][]*models.Vacancy{
			"golang": {{ID: 1}, {ID: 2}},
		},
	}
	ingest := &countingIngest{}
	d := New(crawler, ingest, arbor.NewLogger(), 4)

	d.Enqueue(models.APIHeadHunter, "golang")

	waitUntil(t, func() bool {
		batches, _ := ingest.stats()
		return batches == 1
	}, "invocation did not complete")

	_, records := ingest.stats()
	assert.Equal(t, 2, records)
	assert.Equal(t, []string{"hh/golang"}, crawler.invocations())

	require.NoError(t, d.Close())
}

func TestCloseFinishesInFlightAndDropsQueued(t *testing.T) {
	crawler := &scriptedCrawler{
		results: map[string][]*models.Vacancy{},
		started: make(chan struct{}, 8),
		block:   make(chan struct{}),
	}
	ingest := &countingIngest{}
	d := New(crawler, ingest, arbor.NewLogger(), 8)

	for i := 0; i < 3; i++ {
		d.Enqueue(models.APIHeadHunter, "query")
	}

	// Wait until the worker holds the first invocation, then shut down
	// while it is still blocked.
	<-crawler.started
	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()
	time.Sleep(20 * time.Millisecond)
	close(crawler.block)
	<-closed

	// The in-flight invocation completed; the two queued ones were dropped.
	assert.Len(t, crawler.invocations(), 1)
}

func TestCrawlFailureDoesNotStopWorker(t *testing.T) {
	crawler := &scriptedCrawler{
		err:     context.DeadlineExceeded,
		results: map[string][]*models.Vacancy{},
	}
	ingest := &countingIngest{}
	d := New(crawler, ingest, arbor.NewLogger(), 4)

	d.Enqueue(models.APIHeadHunter, "first")
	d.Enqueue(models.APIHeadHunter, "second")

	waitUntil(t, func() bool { return len(crawler.invocations()) == 2 }, "worker stopped after a failed invocation")

	batches, _ := ingest.stats()
	assert.Zero(t, batches, "failed crawls must not reach ingestion")
	require.NoError(t, d.Close())
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	crawler := &scriptedCrawler{
		results: map[string][]*models.Vacancy{},
		block:   block,
	}
	ingest := &countingIngest{}
	d := New(crawler, ingest, arbor.NewLogger(), 1)

	// First fills the worker, second fills the queue, the rest are dropped.
	for i := 0; i < 6; i++ {
		d.Enqueue(models.APIHeadHunter, "query")
	}
	close(block)

	require.NoError(t, d.Close())
	assert.LessOrEqual(t, len(crawler.invocations()), 2)
}
