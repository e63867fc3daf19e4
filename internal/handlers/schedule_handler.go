package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// ScheduleHandler handles HTTP requests for the crawl timetable.
type ScheduleHandler struct {
	scheduler interfaces.SchedulerService
	timetable interfaces.TimetableStore
	logger    arbor.ILogger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduler interfaces.SchedulerService, timetable interfaces.TimetableStore, logger arbor.ILogger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduler: scheduler,
		timetable: timetable,
		logger:    logger,
	}
}

// Handle dispatches /api/schedule by method.
func (h *ScheduleHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/schedule.
func (h *ScheduleHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.timetable.Get()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read timetable")
		WriteError(w, http.StatusInternalServerError, "failed to read timetable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// add handles POST /api/schedule. The body is either a single entry object
// or an array of entries; an array is applied as one all-or-nothing batch.
func (h *ScheduleHandler) add(w http.ResponseWriter, r *http.Request) {
	entries, err := decodeEntries(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if len(entries) == 0 {
		WriteError(w, http.StatusBadRequest, "no schedule entries in request")
		return
	}

	if err := h.scheduler.AddBatch(entries); err != nil {
		if models.IsKind(err, models.ErrMissingTime) || models.IsKind(err, models.ErrWrongTimeFormat) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Failed to add schedule entries")
		WriteError(w, http.StatusInternalServerError, "failed to add schedule entries")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "created",
		"added":  len(entries),
	})
}

// remove handles DELETE /api/schedule. The target entry comes from the
// "query" and "time" URL parameters or, failing that, a JSON body.
// Removing an absent entry succeeds.
func (h *ScheduleHandler) remove(w http.ResponseWriter, r *http.Request) {
	entry := models.ScheduleEntry{
		Query: r.URL.Query().Get("query"),
		Time:  r.URL.Query().Get("time"),
	}
	if entry.Query == "" && entry.Time == "" {
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if entry.Query == "" || entry.Time == "" {
		WriteError(w, http.StatusBadRequest, "query and time are required")
		return
	}

	if err := h.scheduler.Remove(entry); err != nil {
		h.logger.Error().Err(err).Msg("Failed to remove schedule entry")
		WriteError(w, http.StatusInternalServerError, "failed to remove schedule entry")
		return
	}

	WriteSuccess(w, "schedule entry removed")
}

// decodeEntries accepts either one entry object or an array of entries.
func decodeEntries(r *http.Request) ([]models.ScheduleEntry, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []models.ScheduleEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var entry models.ScheduleEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return nil, err
	}
	return []models.ScheduleEntry{entry}, nil
}
