package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// IngestService persists exactly the subset of records whose IDs are not
// already stored, and reports how many were added. Running the same input
// twice adds zero records the second time.
type IngestService interface {
	Ingest(ctx context.Context, vacancies []*models.Vacancy) (int, error)
}
