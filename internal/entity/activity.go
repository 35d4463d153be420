package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity é uma entrada de auditoria do lead. Append-only.
type Activity struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	UserID      *string   `json:"usuario_id,omitempty"`
	Description string    `json:"descricao"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewActivity(leadID string, userID *string, description string) *Activity {
	return &Activity{
		ID:          uuid.New().String(),
		LeadID:      leadID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

type ActivityRepositoryInterface interface {
	Create(ctx context.Context, a *Activity) error
	ListByLead(ctx context.Context, leadID string) ([]Activity, error)
}
