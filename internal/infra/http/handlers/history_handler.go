package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadHistory interface {
	FollowUpsOf(ctx context.Context, leadID string) ([]entity.FollowUp, error)
	CompleteFollowUp(ctx context.Context, id string) error
	ActivitiesOf(ctx context.Context, leadID string) ([]entity.Activity, error)
}

type HistoryHandler struct {
	history LeadHistory
	logger  zerolog.Logger
}

func NewHistoryHandler(history LeadHistory, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, logger: logger}
}

func (h *HistoryHandler) FollowUps(w http.ResponseWriter, r *http.Request) {
	items, err := h.history.FollowUpsOf(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HistoryHandler) CompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	if err := h.history.CompleteFollowUp(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryHandler) Activities(w http.ResponseWriter, r *http.Request) {
	items, err := h.history.ActivitiesOf(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
