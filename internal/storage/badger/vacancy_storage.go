package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// VacancyStorage implements the VacancyStorage interface for Badger.
type VacancyStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVacancyStorage creates a new VacancyStorage instance.
func NewVacancyStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VacancyStorage {
	return &VacancyStorage{
		db:     db,
		logger: logger,
	}
}

// ExistingIDs returns the subset of ids already present in the store.
func (s *VacancyStorage) ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error) {
	existing := make(map[int]bool, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var vacancy models.Vacancy
		err := s.db.Store().Get(id, &vacancy)
		if err == nil {
			existing[id] = true
			continue
		}
		if errors.Is(err, badgerhold.ErrNotFound) {
			continue
		}
		return nil, fmt.Errorf("failed to check vacancy %d: %w", id, err)
	}
	return existing, nil
}

// InsertBatch persists all given vacancies in a single transaction. A
// duplicate key anywhere in the batch rolls the whole batch back and
// surfaces as ErrAlreadyExists.
func (s *VacancyStorage) InsertBatch(ctx context.Context, vacancies []*models.Vacancy) error {
	if len(vacancies) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	store := s.db.Store()
	err := store.Badger().Update(func(tx *badgerdb.Txn) error {
		for _, vacancy := range vacancies {
			if err := store.TxInsert(tx, vacancy.ID, vacancy); err != nil {
				if errors.Is(err, badgerhold.ErrKeyExists) {
					return models.NewError(models.ErrAlreadyExists, "vacancy %d already stored", vacancy.ID)
				}
				return fmt.Errorf("failed to insert vacancy %d: %w", vacancy.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Int("count", len(vacancies)).Msg("Vacancy batch inserted")
	return nil
}

// GetVacancy returns one stored record by ID.
func (s *VacancyStorage) GetVacancy(ctx context.Context, id int) (*models.Vacancy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var vacancy models.Vacancy
	if err := s.db.Store().Get(id, &vacancy); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("vacancy not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get vacancy: %w", err)
	}
	return &vacancy, nil
}

// CountVacancies returns the number of stored records.
func (s *VacancyStorage) CountVacancies(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, err := s.db.Store().Count(&models.Vacancy{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count vacancies: %w", err)
	}
	return int(count), nil
}
