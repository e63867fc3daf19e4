package crawler

import (
	"context"
	"fmt"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/hh"
	"github.com/ternarybob/colligo/internal/models"
)

// stubClient serves canned search pages and details.
type stubClient struct {
	pages     map[int]*hh.SearchPage
	details   map[int]*hh.VacancyDetail
	searchErr error
	detailErr error
	closed    bool
}

func (c *stubClient) Search(ctx context.Context, query string, page int) (*hh.SearchPage, error) {
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	result, ok := c.pages[page]
	if !ok {
		return &hh.SearchPage{}, nil
	}
	return result, nil
}

func (c *stubClient) Vacancy(ctx context.Context, id int) (*hh.VacancyDetail, error) {
	if c.detailErr != nil {
		return nil, c.detailErr
	}
	detail, ok := c.details[id]
	if !ok {
		return nil, &hh.APIError{StatusCode: 404, Endpoint: "/vacancies"}
	}
	return detail, nil
}

func (c *stubClient) Close() {
	c.closed = true
}

func detailFor(id int) *hh.VacancyDetail {
	return &hh.VacancyDetail{
		ID:           fmt.Sprintf("%d", id),
		Name:         fmt.Sprintf("Vacancy %d", id),
		Description:  "<p>plain</p>",
		AlternateURL: fmt.Sprintf("https://hh.ru/vacancy/%d", id),
		PublishedAt:  "2025-06-01T10:00:00+0300",
	}
}

// threePageStub models a query with 3 result pages holding 2+2+1 items.
func threePageStub() *stubClient {
	c := &stubClient{
		pages:   make(map[int]*hh.SearchPage),
		details: make(map[int]*hh.VacancyDetail),
	}
	ids := [][]int{{101, 102}, {103, 104}, {105}}
	for page, pageIDs := range ids {
		sp := &hh.SearchPage{Pages: 3, Found: 5, Page: page}
		for _, id := range pageIDs {
			sp.Items = append(sp.Items, hh.SearchItem{ID: fmt.Sprintf("%d", id)})
			c.details[id] = detailFor(id)
		}
		c.pages[page] = sp
	}
	return c
}

func newTestService(stub *stubClient) *Service {
	cfg := common.DefaultConfig().Crawler
	svc := NewService(&cfg, arbor.NewLogger())
	svc.newClient = func() catalogClient { return stub }
	return svc
}

func TestCrawlSweepsAllPages(t *testing.T) {
	stub := threePageStub()
	svc := newTestService(stub)

	vacancies, err := svc.Crawl(context.Background(), models.APIHeadHunter, "golang")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(vacancies) != 5 {
		t.Fatalf("Crawl() returned %d vacancies, want 5", len(vacancies))
	}

	want := []int{101, 102, 103, 104, 105}
	for i, id := range want {
		if vacancies[i].ID != id {
			t.Errorf("vacancies[%d].ID = %d, want %d", i, vacancies[i].ID, id)
		}
	}
	if !stub.closed {
		t.Error("client session not closed after crawl")
	}
}

func TestCrawlRejectsUnknownAPI(t *testing.T) {
	svc := newTestService(threePageStub())

	_, err := svc.Crawl(context.Background(), "linkedin", "golang")
	if !models.IsKind(err, models.ErrUnsupportedFormat) {
		t.Fatalf("Crawl() = %v, want ErrUnsupportedFormat", err)
	}
}

func TestCrawlAbortsOnClientError(t *testing.T) {
	stub := threePageStub()
	stub.searchErr = &hh.APIError{StatusCode: 400, Endpoint: "/vacancies", Message: "bad request"}
	svc := newTestService(stub)

	_, err := svc.Crawl(context.Background(), models.APIHeadHunter, "golang")
	if !models.IsKind(err, models.ErrRemoteClient) {
		t.Fatalf("Crawl() = %v, want ErrRemoteClient", err)
	}
	if !stub.closed {
		t.Error("client session not closed on error path")
	}
}

func TestCrawlAbortsOnDetailClientError(t *testing.T) {
	stub := threePageStub()
	stub.detailErr = &hh.APIError{StatusCode: 403, Endpoint: "/vacancies/101", Message: "captcha required"}
	svc := newTestService(stub)

	_, err := svc.Crawl(context.Background(), models.APIHeadHunter, "golang")
	if !models.IsKind(err, models.ErrRemoteClient) {
		t.Fatalf("Crawl() = %v, want ErrRemoteClient", err)
	}
	if !stub.closed {
		t.Error("client session not closed on error path")
	}
}

func TestCrawlSkipsNonNumericIDs(t *testing.T) {
	stub := &stubClient{
		pages: map[int]*hh.SearchPage{
			0: {
				Pages: 1,
				Items: []hh.SearchItem{{ID: "101"}, {ID: "weird"}, {ID: "102"}},
			},
		},
		details: map[int]*hh.VacancyDetail{
			101: detailFor(101),
			102: detailFor(102),
		},
	}
	svc := newTestService(stub)

	vacancies, err := svc.Crawl(context.Background(), models.APIHeadHunter, "golang")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(vacancies) != 2 {
		t.Errorf("Crawl() returned %d vacancies, want 2", len(vacancies))
	}
}

func TestCrawlEmptyResult(t *testing.T) {
	stub := &stubClient{
		pages:   map[int]*hh.SearchPage{0: {Pages: 0, Found: 0}},
		details: map[int]*hh.VacancyDetail{},
	}
	svc := newTestService(stub)

	vacancies, err := svc.Crawl(context.Background(), models.APIHeadHunter, "nothing")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(vacancies) != 0 {
		t.Errorf("Crawl() returned %d vacancies, want 0", len(vacancies))
	}
}
