package interfaces

import (
	"time"

	"github.com/ternarybob/colligo/internal/models"
)

// JobStatus describes one registered daily job.
type JobStatus struct {
	Query     string     `json:"query"`
	API       string     `json:"api,omitempty"`
	Time      string     `json:"time"`
	LastFired *time.Time `json:"last_fired,omitempty"`
}

// SchedulerService owns the in-memory daily job table and the polling loop
// that fires due jobs through the Dispatcher. The job table is always a
// rebuild of a single TimetableStore snapshot; mutations go through the
// stop/apply/reload/restart sequence so the poller never observes a
// half-updated table.
type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool

	// Add persists a new entry and reschedules.
	Add(entry models.ScheduleEntry) error
	// AddBatch persists several entries and reschedules once.
	AddBatch(entries []models.ScheduleEntry) error
	// Remove deletes matching entries and reschedules.
	Remove(entry models.ScheduleEntry) error

	// Mutate stops the poller, applies fn against the timetable store,
	// reloads the job table from a fresh snapshot and restarts the poller.
	// It returns after the restart; fn's error is passed through.
	Mutate(fn func(TimetableStore) error) error

	// Jobs returns the current job table for inspection.
	Jobs() []JobStatus
}
