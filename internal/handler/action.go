package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
)

type actionRequest struct {
	Action         string `json:"action"`
	NotificationID string `json:"notification_id"`
	ScheduleID     string `json:"schedule_id"`
	StudentID      string `json:"student_id"`
	TripDate       string `json:"trip_date"`
	DepartureTime  string `json:"departure_time"`
	RouteName      string `json:"route_name"`
	BoardingStop   string `json:"boarding_stop"`
}

// ProcessAction handles POST /api/v1/notifications/action.
// The processor reports failures through the result's error kind; the handler
// only maps kinds to status codes. Missing parameters map to 400, internal
// errors to 500, every expected booking outcome (full bus, duplicate, not
// available) is a 200 with success=false so clients read one result shape.
func (s *Server) ProcessAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}

	domainReq := domain.ActionRequest{
		Action:        domain.ActionKind(req.Action),
		DepartureTime: req.DepartureTime,
		RouteName:     req.RouteName,
		BoardingStop:  req.BoardingStop,
	}
	var ok bool
	if domainReq.NotificationID, ok = parseOptionalUUID(req.NotificationID); !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "notification_id must be a valid UUID")
		return
	}
	if domainReq.ScheduleID, ok = parseOptionalUUID(req.ScheduleID); !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "schedule_id must be a valid UUID")
		return
	}
	if domainReq.StudentID, ok = parseOptionalUUID(req.StudentID); !ok {
		writeError(w, http.StatusBadRequest, "validation_error", "student_id must be a valid UUID")
		return
	}
	if req.TripDate != "" {
		parsed, err := time.Parse(dateLayout, req.TripDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "trip_date must be formatted as YYYY-MM-DD")
			return
		}
		domainReq.TripDate = parsed
	}

	result := s.actions.Process(r.Context(), domainReq)

	status := http.StatusOK
	switch result.ErrorKind {
	case domain.ErrorKindMissingParameters:
		status = http.StatusBadRequest
	case domain.ErrorKindInternal:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

// parseOptionalUUID parses s, treating an empty string as uuid.Nil so the
// service layer reports which parameter is missing. ok is false only for a
// malformed non-empty value.
func parseOptionalUUID(s string) (uuid.UUID, bool) {
	if s == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
