package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "ativo"
	ClientInactive ClientStatus = "inativo"
)

type Client struct {
	ID          string       `json:"id"`
	Name        string       `json:"nome"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"telefone,omitempty"`
	Status      ClientStatus `json:"status"`
	ActivatedAt *time.Time   `json:"data_ativacao,omitempty"`
	LeadID      *string      `json:"lead_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewClientFromLead converte um lead fechado em cliente ativo.
func NewClientFromLead(lead *Lead, activatedAt time.Time) *Client {
	leadID := lead.ID
	return &Client{
		ID:          uuid.New().String(),
		Name:        lead.Name,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Status:      ClientActive,
		ActivatedAt: &activatedAt,
		LeadID:      &leadID,
		CreatedAt:   time.Now(),
	}
}

// NPSCandidate é um cliente junto com a data do último convite de NPS enviado.
type NPSCandidate struct {
	Client       Client
	LastInviteAt *time.Time
}

type ClientRepositoryInterface interface {
	Create(ctx context.Context, c *Client) error
	ListNPSCandidates(ctx context.Context) ([]NPSCandidate, error)
}
