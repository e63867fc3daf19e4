package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// VacancyStorage is the durable record store boundary. Records are keyed by
// vacancy ID; the store is append-mostly and mutated only through InsertBatch.
type VacancyStorage interface {
	// ExistingIDs returns the subset of ids already present in the store.
	ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error)

	// InsertBatch persists all given vacancies as a single transaction.
	InsertBatch(ctx context.Context, vacancies []*models.Vacancy) error

	// GetVacancy returns one stored record by ID.
	GetVacancy(ctx context.Context, id int) (*models.Vacancy, error)

	// CountVacancies returns the number of stored records.
	CountVacancies(ctx context.Context) (int, error)
}

// StorageManager owns the database connection and hands out typed storages.
type StorageManager interface {
	VacancyStorage() VacancyStorage

	// StartMaintenance schedules periodic storage maintenance (value-log
	// garbage collection) using the given cron expression.
	StartMaintenance(schedule string) error

	Close() error
}
