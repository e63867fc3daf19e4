// Package crawler implements the vacancy collection pipeline: resolve the
// result page count for a query, sweep every result page for identifiers,
// then fetch and normalize the full record for each identifier.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/hh"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// catalogClient is the slice of the hh client the crawler uses. Tests
// substitute a stub.
type catalogClient interface {
	Search(ctx context.Context, query string, page int) (*hh.SearchPage, error)
	Vacancy(ctx context.Context, id int) (*hh.VacancyDetail, error)
	Close()
}

// Service implements CrawlerService against the HeadHunter catalog API.
// Every Crawl invocation opens its own client session and closes it on all
// exit paths, so one slow or wedged crawl never poisons connection state
// for the next.
type Service struct {
	config    *common.CrawlerConfig
	logger    arbor.ILogger
	newClient func() catalogClient
}

// NewService creates a crawler service from the crawler configuration.
func NewService(config *common.CrawlerConfig, logger arbor.ILogger) *Service {
	s := &Service{
		config: config,
		logger: logger,
	}
	s.newClient = func() catalogClient {
		return hh.NewClient(
			hh.WithBaseURL(config.BaseURL),
			hh.WithUserAgent(config.UserAgent),
			hh.WithPerPage(config.PerPage),
			hh.WithTimeout(config.RequestTimeout),
			hh.WithDelays(config.PageDelay, config.DetailDelay),
			hh.WithLogger(logger),
		)
	}
	return s
}

// Crawl collects every vacancy currently matching query. Only the "hh" API
// is supported. A 4xx from the catalog aborts the invocation with
// ErrRemoteClient; transport errors abort with the underlying error. There
// are no retries: the next scheduled run is the retry.
func (s *Service) Crawl(ctx context.Context, api, query string) ([]*models.Vacancy, error) {
	if api != models.APIHeadHunter {
		return nil, models.NewError(models.ErrUnsupportedFormat, "crawl API %q is not supported", api)
	}

	client := s.newClient()
	defer client.Close()

	ids, err := s.collectIDs(ctx, client, query)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("query", query).
		Int("ids", len(ids)).
		Msg("Identifier sweep complete, fetching details")

	vacancies := make([]*models.Vacancy, 0, len(ids))
	for _, id := range ids {
		detail, err := client.Vacancy(ctx, id)
		if err != nil {
			return nil, s.remoteErr(err, fmt.Sprintf("failed to fetch vacancy %d", id))
		}
		vacancy, err := normalize(detail)
		if err != nil {
			// A malformed record is logged and skipped; it must not sink
			// the rest of the crawl.
			s.logger.Warn().Err(err).Int("id", id).Msg("Skipping malformed vacancy record")
			continue
		}
		vacancies = append(vacancies, vacancy)
	}

	s.logger.Info().
		Str("query", query).
		Int("collected", len(vacancies)).
		Msg("Crawl complete")
	return vacancies, nil
}

// collectIDs sweeps the paged result list. Page zero is fetched first to
// learn the total page count, then every page from zero up is read in
// order. Page zero is requested twice; the result set can shift between
// the two reads and later sweeps tolerate that.
func (s *Service) collectIDs(ctx context.Context, client catalogClient, query string) ([]int, error) {
	first, err := client.Search(ctx, query, 0)
	if err != nil {
		return nil, s.remoteErr(err, "failed to resolve result page count")
	}

	s.logger.Info().
		Str("query", query).
		Int("pages", first.Pages).
		Int("found", first.Found).
		Msg("Starting identifier sweep")

	var ids []int
	for page := 0; page < first.Pages; page++ {
		result, err := client.Search(ctx, query, page)
		if err != nil {
			return nil, s.remoteErr(err, fmt.Sprintf("failed to fetch result page %d", page))
		}
		for _, item := range result.Items {
			id, err := strconv.Atoi(item.ID)
			if err != nil {
				s.logger.Warn().Str("id", item.ID).Msg("Skipping non-numeric vacancy identifier")
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// remoteErr tags 4xx catalog responses as ErrRemoteClient so callers can
// classify the abort; other failures pass through wrapped.
func (s *Service) remoteErr(err error, msg string) error {
	var apiErr *hh.APIError
	if errors.As(err, &apiErr) && apiErr.IsClientError() {
		return models.WrapError(models.ErrRemoteClient, err, "%s", msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// compile-time interface check
var _ interfaces.CrawlerService = (*Service)(nil)
