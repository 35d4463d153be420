package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type NPSSurvey interface {
	Get(ctx context.Context, token string) (*entity.NPSInvitation, error)
	Submit(ctx context.Context, input usecase.SubmitNPSInput) (*entity.NPSResponse, error)
}

type NPSHandler struct {
	survey NPSSurvey
	logger zerolog.Logger
}

func NewNPSHandler(survey NPSSurvey, logger zerolog.Logger) *NPSHandler {
	return &NPSHandler{survey: survey, logger: logger}
}

// SurveyResponse expõe só o que o formulário público precisa. O token não volta.
type SurveyResponse struct {
	ClientName string    `json:"cliente_nome"`
	ExpiresAt  time.Time `json:"expira_em"`
}

func (h *NPSHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.survey.Get(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SurveyResponse{ClientName: inv.ClientName, ExpiresAt: inv.ExpiresAt})
}

func (h *NPSHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req usecase.SubmitNPSInput
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Token = chi.URLParam(r, "token")

	if _, err := h.survey.Submit(r.Context(), req); err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}
