// Package scheduler implements the daily recurring-job scheduler: an
// in-memory job table derived from the timetable store, driven by a
// 1-second cooperative polling loop.
package scheduler

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// DefaultTickInterval is the polling period of the scheduler loop.
const DefaultTickInterval = time.Second

// job is the in-memory, executable form of a schedule entry. Jobs are owned
// exclusively by the Service and always derivable from the timetable; they
// are never persisted.
type job struct {
	entry     models.ScheduleEntry
	at        models.TimeOfDay
	lastFired time.Time
}

// Service implements SchedulerService. The job table is only rebuilt while
// the poller is stopped, so the loop never observes a half-updated table.
type Service struct {
	timetable  interfaces.TimetableStore
	dispatcher interfaces.Dispatcher
	logger     arbor.ILogger

	now  func() time.Time
	tick time.Duration

	// mutateMu serializes the stop/apply/reload/restart sequence against
	// concurrent Start/Stop/Mutate callers (including the file watcher).
	mutateMu sync.Mutex

	mu      sync.Mutex
	jobs    []*job
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the wall-clock source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTickInterval overrides the polling period. Used in tests.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) {
		s.tick = d
	}
}

// NewService creates a scheduler and loads the initial job table from the
// timetable store. The poller is not started.
func NewService(timetable interfaces.TimetableStore, dispatcher interfaces.Dispatcher, logger arbor.ILogger, opts ...Option) (*Service, error) {
	s := &Service{
		timetable:  timetable,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		tick:       DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the polling loop.
func (s *Service) Start() error {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()
	s.startLoop()
	return nil
}

// Stop halts the polling loop and waits for it to exit. In-flight crawl
// invocations already handed to the dispatcher are not cancelled.
func (s *Service) Stop() error {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()
	s.stopLoop()
	return nil
}

// IsRunning returns true if the polling loop is active.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Add persists a new entry and reschedules.
func (s *Service) Add(entry models.ScheduleEntry) error {
	return s.Mutate(func(t interfaces.TimetableStore) error {
		return t.Add(entry)
	})
}

// AddBatch persists several entries and reschedules once.
func (s *Service) AddBatch(entries []models.ScheduleEntry) error {
	return s.Mutate(func(t interfaces.TimetableStore) error {
		return t.AddBatch(entries)
	})
}

// Remove deletes matching entries and reschedules.
func (s *Service) Remove(entry models.ScheduleEntry) error {
	return s.Mutate(func(t interfaces.TimetableStore) error {
		return t.Remove(entry)
	})
}

// Mutate stops the poller, applies fn against the timetable store, rebuilds
// the job table from a fresh snapshot and restarts the poller. The rebuild
// is deliberately total rather than incremental: job tables are small and
// mutations are operator-driven, and a full rebuild guarantees the table
// always reflects a single consistent store snapshot. fn may be nil to
// force a plain reload.
func (s *Service) Mutate(fn func(interfaces.TimetableStore) error) error {
	s.mutateMu.Lock()
	defer s.mutateMu.Unlock()

	wasRunning := s.IsRunning()
	if wasRunning {
		s.stopLoop()
	}

	var applyErr error
	if fn != nil {
		applyErr = fn(s.timetable)
	}

	if err := s.load(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to reload job table after mutation")
		if applyErr == nil {
			applyErr = err
		}
	}

	if wasRunning {
		s.startLoop()
	}

	return applyErr
}

// Reload rebuilds the job table from the store without mutating it. Used
// when the timetable file is edited externally.
func (s *Service) Reload() error {
	return s.Mutate(nil)
}

// Jobs returns the current job table.
func (s *Service) Jobs() []interfaces.JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]interfaces.JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		status := interfaces.JobStatus{
			Query: j.entry.Query,
			API:   j.entry.Catalog(),
			Time:  j.entry.Time,
		}
		if !j.lastFired.IsZero() {
			fired := j.lastFired
			status.LastFired = &fired
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// load rebuilds the in-memory job table from a timetable snapshot.
// Fired-state survives the rebuild keyed by (query, time), so a mutation
// never causes an already-fired job to fire twice in one day.
func (s *Service) load() error {
	entries, err := s.timetable.Get()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]time.Time, len(s.jobs))
	for _, j := range s.jobs {
		previous[jobKey(j.entry)] = j.lastFired
	}

	jobs := make([]*job, 0, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			// Hand-edited file may carry invalid entries; skip them
			// rather than refusing the whole schedule.
			s.logger.Warn().
				Err(err).
				Str("query", entry.Query).
				Msg("Skipping invalid timetable entry")
			continue
		}
		at, err := models.ParseTimeOfDay(entry.Time)
		if err != nil {
			s.logger.Warn().Err(err).Str("time", entry.Time).Msg("Skipping unparsable timetable entry")
			continue
		}
		j := &job{entry: entry, at: at}
		if fired, ok := previous[jobKey(entry)]; ok {
			j.lastFired = fired
		}
		jobs = append(jobs, j)
	}

	s.jobs = jobs
	s.logger.Info().Int("count", len(jobs)).Msg("Job table loaded from timetable")
	return nil
}

// startLoop launches the poll goroutine. Callers hold mutateMu.
func (s *Service) startLoop() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.run(stop, done)
	s.logger.Info().Msg("Scheduler started")
}

// stopLoop signals the poll goroutine and waits for it to exit. Callers
// hold mutateMu.
func (s *Service) stopLoop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	done := s.doneCh
	s.running = false
	s.mu.Unlock()

	<-done
	s.logger.Info().Msg("Scheduler stopped")
}

// run is the polling loop. Dispatching is fire-and-forget, so a tick never
// blocks on network I/O and a job's failure cannot stop the poller.
func (s *Service) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.fireDue()
		}
	}
}

// fireDue dispatches every job whose time of day has elapsed within the
// current day and which has not fired today. Crossing midnight resets the
// fired-state implicitly because lastFired falls on a previous day.
func (s *Service) fireDue() {
	now := s.now()

	s.mu.Lock()
	var due []*job
	for _, j := range s.jobs {
		if sameDay(j.lastFired, now) {
			continue
		}
		if j.at.Elapsed(now) {
			j.lastFired = now
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		s.logger.Info().
			Str("query", j.entry.Query).
			Str("time", j.entry.Time).
			Str("api", j.entry.Catalog()).
			Msg("Firing scheduled crawl")
		s.dispatcher.Enqueue(j.entry.Catalog(), j.entry.Query)
	}
}

func jobKey(entry models.ScheduleEntry) string {
	return entry.Query + "\x00" + entry.Time
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// compile-time interface check
var _ interfaces.SchedulerService = (*Service)(nil)
