package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pendente"
	CommissionApproved  CommissionStatus = "aprovada"
	CommissionPaid      CommissionStatus = "paga"
	CommissionCancelled CommissionStatus = "cancelada"
)

var commissionTransitions = map[CommissionStatus][]CommissionStatus{
	CommissionPending:  {CommissionApproved, CommissionCancelled},
	CommissionApproved: {CommissionPaid, CommissionCancelled},
}

func (s CommissionStatus) Valid() bool {
	switch s {
	case CommissionPending, CommissionApproved, CommissionPaid, CommissionCancelled:
		return true
	}
	return false
}

func (s CommissionStatus) CanTransition(to CommissionStatus) bool {
	for _, next := range commissionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesFor lista os status a partir dos quais é possível chegar em to.
func SourcesFor(to CommissionStatus) []CommissionStatus {
	var out []CommissionStatus
	for from, nexts := range commissionTransitions {
		for _, n := range nexts {
			if n == to {
				out = append(out, from)
			}
		}
	}
	return out
}

type Commission struct {
	ID             string           `json:"id"`
	LeadID         string           `json:"lead_id"`
	ClientID       *string          `json:"cliente_id,omitempty"`
	CollaboratorID string           `json:"colaborador_id"`
	DealValue      decimal.Decimal  `json:"valor_venda"`
	Rate           decimal.Decimal  `json:"percentual"`
	Amount         decimal.Decimal  `json:"valor"`
	Status         CommissionStatus `json:"status"`
	ApprovedAt     *time.Time       `json:"aprovada_em,omitempty"`
	PaidAt         *time.Time       `json:"paga_em,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewCommission calcula o valor como dealValue * rate, arredondado em centavos.
func NewCommission(leadID, collaboratorID string, dealValue, rate decimal.Decimal) (*Commission, error) {
	if collaboratorID == "" {
		return nil, errors.New("colaborador responsável é obrigatório")
	}
	if !dealValue.IsPositive() {
		return nil, errors.New("valor da venda deve ser positivo")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.New("percentual de comissão deve estar entre 0 e 1")
	}

	return &Commission{
		ID:             uuid.New().String(),
		LeadID:         leadID,
		CollaboratorID: collaboratorID,
		DealValue:      dealValue,
		Rate:           rate,
		Amount:         dealValue.Mul(rate).Round(2),
		Status:         CommissionPending,
		CreatedAt:      time.Now(),
	}, nil
}

type CommissionRepositoryInterface interface {
	Create(ctx context.Context, c *Commission) error
	List(ctx context.Context, status *CommissionStatus) ([]Commission, error)
	// UpdateStatus altera apenas as comissões cujo status atual está em from.
	UpdateStatus(ctx context.Context, ids []string, from []CommissionStatus, to CommissionStatus, at time.Time) (int64, error)
}
