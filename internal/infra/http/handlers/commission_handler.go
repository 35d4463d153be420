package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Commissions interface {
	List(ctx context.Context, status string) ([]entity.Commission, error)
	Approve(ctx context.Context, input usecase.CommissionBatchInput) (*usecase.CommissionBatchOutput, error)
	Pay(ctx context.Context, input usecase.CommissionBatchInput) (*usecase.CommissionBatchOutput, error)
	Cancel(ctx context.Context, input usecase.CommissionBatchInput) (*usecase.CommissionBatchOutput, error)
}

type CommissionHandler struct {
	commissions Commissions
	logger      zerolog.Logger
}

func NewCommissionHandler(commissions Commissions, logger zerolog.Logger) *CommissionHandler {
	return &CommissionHandler{commissions: commissions, logger: logger}
}

func (h *CommissionHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.commissions.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *CommissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, h.commissions.Approve)
}

func (h *CommissionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, h.commissions.Pay)
}

func (h *CommissionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, h.commissions.Cancel)
}

func (h *CommissionHandler) batch(w http.ResponseWriter, r *http.Request, op func(context.Context, usecase.CommissionBatchInput) (*usecase.CommissionBatchOutput, error)) {
	var req usecase.CommissionBatchInput
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := op(r.Context(), req)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
