package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	NPSInvitationTTL    = 7 * 24 * time.Hour
	NPSMinClientAgeDays = 30
)

type NPSConfig struct {
	ID              string `json:"id"`
	Enabled         bool   `json:"ativo"`
	FrequencyMonths int    `json:"frequencia_meses"`
	EmailSubject    string `json:"assunto_email"`
	EmailBody       string `json:"corpo_email"`
}

type NPSInvitation struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"cliente_id"`
	Token       string     `json:"token"`
	SentAt      time.Time  `json:"enviado_em"`
	ExpiresAt   time.Time  `json:"expira_em"`
	RespondedAt *time.Time `json:"respondido_em,omitempty"`

	ClientName string `json:"cliente_nome,omitempty"`
}

// NewNPSInvitation gera um token opaco de uso único, válido por 7 dias.
func NewNPSInvitation(clientID string, now time.Time) *NPSInvitation {
	return &NPSInvitation{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Token:     strings.ReplaceAll(uuid.New().String(), "-", "") + strings.ReplaceAll(uuid.New().String(), "-", ""),
		SentAt:    now,
		ExpiresAt: now.Add(NPSInvitationTTL),
	}
}

// CheckSubmittable valida o convite no momento da resposta. Expiração vem primeiro.
func (i *NPSInvitation) CheckSubmittable(now time.Time) error {
	if now.After(i.ExpiresAt) {
		return ErrInvitationExpired
	}
	if i.RespondedAt != nil {
		return ErrAlreadyResponded
	}
	return nil
}

type NPSResponse struct {
	ID           string    `json:"id"`
	InvitationID string    `json:"envio_id"`
	ClientID     string    `json:"cliente_id"`
	Score        int       `json:"nota"`
	Comment      string    `json:"comentario,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewNPSResponse(inv *NPSInvitation, score int, comment string) (*NPSResponse, error) {
	if score < 0 || score > 10 {
		return nil, errors.New("nota deve estar entre 0 e 10")
	}
	return &NPSResponse{
		ID:           uuid.New().String(),
		InvitationID: inv.ID,
		ClientID:     inv.ClientID,
		Score:        score,
		Comment:      strings.TrimSpace(comment),
		CreatedAt:    time.Now(),
	}, nil
}

// IsEligibleForNPS: cliente ativo, ativado há mais de 30 dias e sem convite
// nos últimos frequencyMonths meses.
func IsEligibleForNPS(c Client, lastInviteAt *time.Time, now time.Time, frequencyMonths int) bool {
	if c.Status != ClientActive || c.ActivatedAt == nil {
		return false
	}
	if !c.ActivatedAt.Before(now.AddDate(0, 0, -NPSMinClientAgeDays)) {
		return false
	}
	if lastInviteAt != nil && lastInviteAt.After(now.AddDate(0, -frequencyMonths, 0)) {
		return false
	}
	return true
}

// RenderTemplate substitui {{cliente_nome}} e {{link_pesquisa}}.
func RenderTemplate(tmpl, clientName, link string) string {
	r := strings.NewReplacer("{{cliente_nome}}", clientName, "{{link_pesquisa}}", link)
	return r.Replace(tmpl)
}

type NPSRepositoryInterface interface {
	GetConfig(ctx context.Context) (*NPSConfig, error)
	CreateInvitation(ctx context.Context, inv *NPSInvitation) error
	FindInvitationByToken(ctx context.Context, token string) (*NPSInvitation, error)
	// RecordResponse marca o convite como respondido e grava a resposta na mesma
	// transação. Retorna false, sem gravar nada, se o convite já tinha resposta.
	RecordResponse(ctx context.Context, r *NPSResponse, at time.Time) (bool, error)
}
