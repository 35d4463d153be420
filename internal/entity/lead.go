package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Lead struct {
	ID        string  `json:"id"`
	Name      string  `json:"nome"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"telefone,omitempty"`
	Company   string  `json:"empresa,omitempty"`
	OriginID  *string `json:"origem_id,omitempty"`
	ServiceID *string `json:"servico_id,omitempty"`

	SDRID    *string `json:"sdr_responsavel_id,omitempty"`
	CloserID *string `json:"closer_responsavel_id,omitempty"`

	Funnel      Funnel `json:"funil_atual"`
	StageSDR    *Stage `json:"etapa_sdr"`
	StageCloser *Stage `json:"etapa_closer"`
	StageFrios  *Stage `json:"etapa_frios"`

	ScheduledAt    *time.Time       `json:"data_agendamento,omitempty"`
	LossReasonID   *string          `json:"motivo_perda_id,omitempty"`
	LostAt         *time.Time       `json:"data_perda,omitempty"`
	DiscardReason  *string          `json:"motivo_descarte,omitempty"`
	Reactivations  int              `json:"reativacoes"`
	EstimatedValue *decimal.Decimal `json:"valor_estimado,omitempty"`
	Notes          string           `json:"observacoes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Campos de exibição vindos de JOIN, nunca gravados
	OriginName      string `json:"origem_nome,omitempty"`
	ServiceName     string `json:"servico_nome,omitempty"`
	ResponsibleName string `json:"responsavel_nome,omitempty"`
}

// NewLead cria um lead na entrada do funil SDR.
func NewLead(name, email, phone, company string) (*Lead, error) {
	now := time.Now()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     strings.TrimSpace(phone),
		Company:   strings.TrimSpace(company),
		Funnel:    FunnelSDR,
		StageSDR:  FunnelSDR.InitialStage().Ptr(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("nome é obrigatório")
	}
	if !l.Funnel.Valid() {
		return ErrInvalidFunnel
	}
	// A etapa pode ficar nula só durante a transferência entre funis
	if s := l.StageIn(l.Funnel); s != nil && !l.Funnel.HasStage(*s) {
		return ErrStageNotInFunnel
	}
	return nil
}

// Stage retorna a etapa do funil atual ("" se nula).
func (l *Lead) Stage() Stage {
	if s := l.StageIn(l.Funnel); s != nil {
		return *s
	}
	return ""
}

func (l *Lead) StageIn(f Funnel) *Stage {
	switch f {
	case FunnelSDR:
		return l.StageSDR
	case FunnelCloser:
		return l.StageCloser
	case FunnelFrios:
		return l.StageFrios
	}
	return nil
}

func (l *Lead) setStage(f Funnel, s *Stage) {
	switch f {
	case FunnelSDR:
		l.StageSDR = s
	case FunnelCloser:
		l.StageCloser = s
	case FunnelFrios:
		l.StageFrios = s
	}
}

// MoveTo coloca o lead na etapa s do funil f. Ao trocar de funil, a etapa do
// funil de origem é limpa.
func (l *Lead) MoveTo(f Funnel, s Stage) error {
	if !f.Valid() {
		return ErrInvalidFunnel
	}
	if !f.HasStage(s) {
		return ErrStageNotInFunnel
	}
	if f != l.Funnel {
		l.setStage(l.Funnel, nil)
		l.Funnel = f
	}
	l.setStage(f, s.Ptr())
	l.UpdatedAt = time.Now()
	return nil
}

// LeadRepositoryInterface é implementado pelo banco (internal/infra/database).
type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	Upsert(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	ListByFunnel(ctx context.Context, funnel Funnel) ([]Lead, error)
	Update(ctx context.Context, lead *Lead) error
}
