package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// CrawlHandler handles HTTP requests for on-demand crawls.
type CrawlHandler struct {
	dispatcher interfaces.Dispatcher
	logger     arbor.ILogger
}

// NewCrawlHandler creates a new CrawlHandler.
func NewCrawlHandler(dispatcher interfaces.Dispatcher, logger arbor.ILogger) *CrawlHandler {
	return &CrawlHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type crawlRequest struct {
	Query string `json:"query"`
	API   string `json:"api,omitempty"`
}

// TriggerCrawlHandler handles POST /api/crawl. The query comes from the
// "query" URL parameter or, failing that, a JSON body. The crawl runs
// asynchronously; the response only acknowledges the submission.
func (h *CrawlHandler) TriggerCrawlHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	req := crawlRequest{
		Query: r.URL.Query().Get("query"),
		API:   r.URL.Query().Get("api"),
	}
	if req.Query == "" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if req.Query == "" {
		WriteError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.API == "" {
		req.API = models.APIHeadHunter
	}

	h.dispatcher.Enqueue(req.API, req.Query)
	WriteAccepted(w, "crawl queued")
}
