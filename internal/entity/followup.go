package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FollowUp é um contato futuro agendado para o lead. Nunca é apagado, só concluído.
type FollowUp struct {
	ID           string    `json:"id"`
	LeadID       string    `json:"lead_id"`
	ScheduledFor time.Time `json:"data_programada"`
	Description  string    `json:"descricao"`
	Done         bool      `json:"concluido"`
	CreatedBy    *string   `json:"criado_por,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewFollowUp(leadID string, scheduledFor time.Time, description string, createdBy *string) *FollowUp {
	return &FollowUp{
		ID:           uuid.New().String(),
		LeadID:       leadID,
		ScheduledFor: scheduledFor,
		Description:  description,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now(),
	}
}

type FollowUpRepositoryInterface interface {
	Create(ctx context.Context, f *FollowUp) error
	ListByLead(ctx context.Context, leadID string) ([]FollowUp, error)
	Complete(ctx context.Context, id string) error
}
