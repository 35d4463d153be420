package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Meetings interface {
	UpdateStatus(ctx context.Context, id string, input usecase.UpdateMeetingStatusInput) (*entity.Meeting, error)
	Confirm(ctx context.Context, session entity.Session, id string, input usecase.ConfirmMeetingInput) error
}

type MeetingHandler struct {
	meetings Meetings
	logger   zerolog.Logger
}

func NewMeetingHandler(meetings Meetings, logger zerolog.Logger) *MeetingHandler {
	return &MeetingHandler{meetings: meetings, logger: logger}
}

func (h *MeetingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateMeetingStatusInput
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.meetings.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MeetingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req usecase.ConfirmMeetingInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.meetings.Confirm(r.Context(), session, chi.URLParam(r, "id"), req); err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
