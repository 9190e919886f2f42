package handler

import (
	"errors"
	"io"
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

type runRemindersRequest struct {
	Date string `json:"date"`
}

// RunReminders handles POST /api/v1/reminders/run.
// The body is optional: {"date":"2006-01-02"} targets a specific trip date,
// an empty body targets tomorrow. Responds 200 with the run summary.
func (s *Server) RunReminders(w http.ResponseWriter, r *http.Request) {
	var req runRemindersRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}

	var targetDate time.Time
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "date must be formatted as YYYY-MM-DD")
			return
		}
		targetDate = parsed
	}

	summary, err := s.pipeline.Run(r.Context(), targetDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "reminder run failed")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
