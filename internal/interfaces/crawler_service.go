package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// CrawlerService executes one crawl invocation: enumerate every matching
// vacancy ID across the paginated catalog, then fetch and normalize each
// item. There is no partial-result return; any client error aborts the
// whole invocation.
type CrawlerService interface {
	Crawl(ctx context.Context, api, query string) ([]*models.Vacancy, error)
}
