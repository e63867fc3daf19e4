package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Crawling
	mux.HandleFunc("/api/crawl", s.app.CrawlHandler.TriggerCrawlHandler) // POST - queue an on-demand crawl

	// API routes - Schedule management
	mux.HandleFunc("/api/schedule", s.app.ScheduleHandler.Handle) // GET (list), POST (add), DELETE (remove)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler) // GET - application status
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
