package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the HeadHunter API.
	DefaultBaseURL = "https://api.hh.ru"

	// DefaultUserAgent identifies the collector to the API.
	DefaultUserAgent = "colligo/1.0 (vacancy collector)"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPerPage is the page size used for search requests.
	DefaultPerPage = 100

	// DefaultPageDelay is the minimum interval between result-page requests.
	DefaultPageDelay = 50 * time.Millisecond

	// DefaultDetailDelay is the minimum interval between per-item detail
	// requests. The detail endpoint has the tighter rate budget, so this
	// is deliberately larger than DefaultPageDelay.
	DefaultDetailDelay = 500 * time.Millisecond
)

// Client is a catalog API client. One client owns one network session;
// callers that need session-per-invocation semantics create a client per
// crawl and Close it on every exit path.
type Client struct {
	baseURL       string
	userAgent     string
	perPage       int
	httpClient    *http.Client
	logger        arbor.ILogger
	pageLimiter   *rate.Limiter
	detailLimiter *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithUserAgent sets the user agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPerPage sets the search page size (the API caps it at 100).
func WithPerPage(perPage int) ClientOption {
	return func(c *Client) {
		if perPage > 0 {
			c.perPage = perPage
		}
	}
}

// WithDelays sets the inter-page and inter-item minimum delays.
func WithDelays(pageDelay, detailDelay time.Duration) ClientOption {
	return func(c *Client) {
		if pageDelay > 0 {
			c.pageLimiter = rate.NewLimiter(rate.Every(pageDelay), 1)
		}
		if detailDelay > 0 {
			c.detailLimiter = rate.NewLimiter(rate.Every(detailDelay), 1)
		}
	}
}

// NewClient creates a new catalog API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		perPage:   DefaultPerPage,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		pageLimiter:   rate.NewLimiter(rate.Every(DefaultPageDelay), 1),
		detailLimiter: rate.NewLimiter(rate.Every(DefaultDetailDelay), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search requests one page of results for the query. Page numbering starts
// at zero; the response declares the total page count.
func (c *Client) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	if err := c.pageLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("text", query)
	params.Set("per_page", fmt.Sprintf("%d", c.perPage))
	params.Set("page", fmt.Sprintf("%d", page))

	var result SearchPage
	if err := c.get(ctx, "/vacancies", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Vacancy fetches the full detail payload for one vacancy.
func (c *Client) Vacancy(ctx context.Context, id int) (*VacancyDetail, error) {
	if err := c.detailLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result VacancyDetail
	if err := c.get(ctx, fmt.Sprintf("/vacancies/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close releases the client's network session.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// get performs a GET request to the API.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if c.logger != nil {
		c.logger.Debug().
			Str("endpoint", path).
			Msg("Catalog API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
