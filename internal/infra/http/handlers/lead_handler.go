package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/kanban"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadCreator interface {
	Execute(ctx context.Context, session entity.Session, input usecase.CreateLeadInput) (*entity.Lead, error)
	Capture(ctx context.Context, input usecase.CaptureLeadInput) (*entity.Lead, error)
}

type Board interface {
	Board(ctx context.Context, f entity.Funnel) (kanban.Board, error)
	Move(ctx context.Context, input usecase.MoveLeadStageInput) (*usecase.MoveLeadStageOutput, error)
	Invalidate(ctx context.Context, f entity.Funnel)
}

type LeadHandler struct {
	creator LeadCreator
	board   Board
	logger  zerolog.Logger
}

func NewLeadHandler(creator LeadCreator, board Board, logger zerolog.Logger) *LeadHandler {
	return &LeadHandler{creator: creator, board: board, logger: logger}
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

// CaptureLead atende o formulário público. O rate limit fica no roteador.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var req usecase.CaptureLeadInput
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.creator.Capture(r.Context(), req)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	h.board.Invalidate(r.Context(), intakeFunnel(lead))
	writeJSON(w, http.StatusOK, CaptureLeadResponse{Success: true, ID: lead.ID})
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req usecase.CreateLeadInput
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.creator.Execute(r.Context(), session, req)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	h.board.Invalidate(r.Context(), intakeFunnel(lead))
	writeJSON(w, http.StatusCreated, lead)
}

// intakeFunnel é o funil onde o lead aparece depois da entrada. Um lead
// recapturado continua no funil em que já estava.
func intakeFunnel(lead *entity.Lead) entity.Funnel {
	if lead != nil && lead.Funnel.Valid() {
		return lead.Funnel
	}
	return entity.FunnelSDR
}

func (h *LeadHandler) Board(w http.ResponseWriter, r *http.Request) {
	f, err := entity.ParseFunnel(chi.URLParam(r, "funnel"))
	if err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, err.Error())
		return
	}

	board, err := h.board.Board(r.Context(), f)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

type MoveStageRequest struct {
	Funnel       entity.Funnel         `json:"funil"`
	Target       entity.Stage          `json:"etapa"`
	Confirmation *usecase.Confirmation `json:"confirmacao"`
}

// MoveStage responde 202 quando a etapa exige confirmação: o corpo traz o que o modal deve pedir.
func (h *LeadHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req MoveStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Target == "" {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "etapa é obrigatória")
		return
	}

	out, err := h.board.Move(r.Context(), usecase.MoveLeadStageInput{
		Session:      session,
		LeadID:       chi.URLParam(r, "id"),
		Funnel:       req.Funnel,
		Target:       req.Target,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if out.Outcome == usecase.OutcomePending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, out)
}
