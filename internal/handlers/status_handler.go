package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// StatusHandler handles HTTP requests for application status.
type StatusHandler struct {
	scheduler interfaces.SchedulerService
	storage   interfaces.StorageManager
	logger    arbor.ILogger
	started   time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(scheduler interfaces.SchedulerService, storage interfaces.StorageManager, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		scheduler: scheduler,
		storage:   storage,
		logger:    logger,
		started:   time.Now(),
	}
}

// GetStatusHandler handles GET /api/status.
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	count, err := h.storage.VacancyStorage().CountVacancies(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to count vacancies")
		WriteError(w, http.StatusInternalServerError, "failed to read storage")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":           common.GetVersion(),
		"scheduler_running": h.scheduler.IsRunning(),
		"jobs":              h.scheduler.Jobs(),
		"vacancies":         count,
		"uptime":            time.Since(h.started).Round(time.Second).String(),
	})
}
