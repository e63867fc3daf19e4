package interfaces

import "github.com/ternarybob/colligo/internal/models"

// TimetableStore is a durable, operator-editable collection of schedule
// entries backed by a single file. Implementations keep entries ordered by
// time of day and must never expose a partially written file to readers.
type TimetableStore interface {
	// Get returns the current entries ordered by time of day ascending.
	// A missing backing file is created empty; a corrupt file is treated
	// as empty (logged as a warning, not returned as an error).
	Get() ([]models.ScheduleEntry, error)

	// Add validates and appends a single entry, then atomically rewrites
	// the backing file.
	Add(entry models.ScheduleEntry) error

	// AddBatch validates every entry before persisting any of them; the
	// whole batch is rejected on the first invalid entry.
	AddBatch(entries []models.ScheduleEntry) error

	// Remove deletes all entries matching the (query, time) pair of the
	// given entry. Removing an absent entry is a no-op.
	Remove(entry models.ScheduleEntry) error

	// Path returns the backing file path.
	Path() string
}
