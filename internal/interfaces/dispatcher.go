package interfaces

// Dispatcher is the asynchronous execution boundary between the scheduler
// (or the request surface) and the crawl/ingest pipeline. Enqueue is
// fire-and-forget: submission always succeeds from the caller's point of
// view, and crawl failures are only visible through logs and records.
type Dispatcher interface {
	Enqueue(api, query string)
	Close() error
}
