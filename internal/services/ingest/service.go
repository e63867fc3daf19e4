// Package ingest persists crawled vacancy records, skipping records already
// present in the store.
package ingest

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Service implements IngestService on top of the vacancy storage layer.
type Service struct {
	storage interfaces.VacancyStorage
	logger  arbor.ILogger
}

// NewService creates an ingest service.
func NewService(storage interfaces.VacancyStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Ingest writes the batch to the store, dropping records whose ID already
// exists and deduplicating within the batch itself. Returns the number of
// records actually inserted. The existence check and the insert are two
// steps, not one transaction; with a single writer per store that window
// is harmless, and a concurrent duplicate insert surfaces as an error from
// the store rather than silent corruption.
func (s *Service) Ingest(ctx context.Context, vacancies []*models.Vacancy) (int, error) {
	if len(vacancies) == 0 {
		return 0, nil
	}

	ids := make([]int, 0, len(vacancies))
	for _, v := range vacancies {
		ids = append(ids, v.ID)
	}

	existing, err := s.storage.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	seen := make(map[int]bool, len(vacancies))
	fresh := make([]*models.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if existing[v.ID] || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		fresh = append(fresh, v)
	}

	if len(fresh) == 0 {
		s.logger.Info().
			Int("received", len(vacancies)).
			Msg("No new vacancies in batch")
		return 0, nil
	}

	if err := s.storage.InsertBatch(ctx, fresh); err != nil {
		return 0, err
	}

	s.logger.Info().
		Int("received", len(vacancies)).
		Int("added", len(fresh)).
		Int("skipped", len(vacancies)-len(fresh)).
		Msg("Vacancy batch ingested")
	return len(fresh), nil
}

// compile-time interface check
var _ interfaces.IngestService = (*Service)(nil)
