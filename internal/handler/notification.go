package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ridewise/backend/internal/domain"
)

// notificationPage is the paginated list envelope.
type notificationPage struct {
	Data       []domain.Notification `json:"data"`
	Pagination pagination            `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListNotifications handles GET /api/v1/users/{userID}/notifications.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "user ID must be a valid UUID")
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	notifications, total, err := s.notifications.ListByUser(r.Context(), userID, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list notifications")
		return
	}

	writeJSON(w, http.StatusOK, notificationPage{
		Data: notifications,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/{notificationID}/read.
// Marking an already-read notification succeeds; 404 only for unknown IDs.
func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "notificationID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "notification ID must be a valid UUID")
		return
	}

	if err := s.notifications.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "notification not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "could not mark notification read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}

// queryInt parses an integer query parameter, returning nil when absent or
// malformed so pagination defaults apply.
func queryInt(r *http.Request, key string) *int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
