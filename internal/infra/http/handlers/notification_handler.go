package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type Notifications interface {
	List(ctx context.Context, session entity.Session, limit int) ([]entity.Notification, error)
	SetRead(ctx context.Context, session entity.Session, id string, read bool) error
	MarkAllRead(ctx context.Context, session entity.Session) (int64, error)
}

// Streamer mantém a conexão websocket do usuário aberta.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string)
}

type NotificationHandler struct {
	notifications Notifications
	stream        Streamer
	logger        zerolog.Logger
}

func NewNotificationHandler(notifications Notifications, stream Streamer, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, stream: stream, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.notifications.List(r.Context(), session, limit)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type setReadRequest struct {
	Read *bool `json:"lida"`
}

// SetRead marca como lida por padrão. {"lida": false} desfaz.
func (h *NotificationHandler) SetRead(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req setReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	read := req.Read == nil || *req.Read

	if err := h.notifications.SetRead(r.Context(), session, chi.URLParam(r, "id"), read); err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(r.Context(), session)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"atualizadas": n})
}

func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	h.stream.Serve(w, r, session.UserID)
}
