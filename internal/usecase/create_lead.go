package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CreateLeadInput struct {
	Name           string           `json:"nome" validate:"required,min=2,max=120"`
	Email          string           `json:"email" validate:"omitempty,email"`
	Phone          string           `json:"telefone" validate:"omitempty,phone"`
	Company        string           `json:"empresa" validate:"omitempty,max=120"`
	OriginID       *string          `json:"origem_id"`
	ServiceID      *string          `json:"servico_id"`
	SDRID          *string          `json:"sdr_responsavel_id"`
	EstimatedValue *decimal.Decimal `json:"valor_estimado"`
	Notes          string           `json:"observacoes" validate:"max=2000"`
}

// CaptureLeadInput vem do formulário público do site.
type CaptureLeadInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"nome" validate:"required,min=2,max=120"`
	Phone string `json:"telefone" validate:"omitempty,phone"`
}

type CreateLeadUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Activities entity.ActivityRepositoryInterface
	Logger     zerolog.Logger
}

func NewCreateLeadUseCase(leads entity.LeadRepositoryInterface, activities entity.ActivityRepositoryInterface, logger zerolog.Logger) *CreateLeadUseCase {
	return &CreateLeadUseCase{Leads: leads, Activities: activities, Logger: logger}
}

// Execute cadastra o lead manualmente, em sdr/novo.
func (uc *CreateLeadUseCase) Execute(ctx context.Context, session entity.Session, input CreateLeadInput) (*entity.Lead, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, input.Company)
	if err != nil {
		return nil, invalidField("nome", err.Error())
	}
	lead.OriginID = input.OriginID
	lead.ServiceID = input.ServiceID
	lead.EstimatedValue = input.EstimatedValue
	lead.Notes = input.Notes
	lead.SDRID = input.SDRID
	if lead.SDRID == nil {
		lead.SDRID = session.UserIDPtr()
	}

	if err := uc.Leads.Create(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrLeadAlreadyExists) {
			return nil, &DomainError{Code: CodeConflict, Message: err.Error(), Err: err}
		}
		return nil, databaseError("erro ao salvar lead", err)
	}

	uc.logActivity(ctx, lead.ID, session.UserIDPtr(), "Lead criado")
	return lead, nil
}

// Capture grava ou atualiza o lead pelo email. Um lead existente mantém funil e etapa.
func (uc *CreateLeadUseCase) Capture(ctx context.Context, input CaptureLeadInput) (*entity.Lead, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone, "")
	if err != nil {
		return nil, invalidField("nome", err.Error())
	}

	if err := uc.Leads.Upsert(ctx, lead); err != nil {
		return nil, databaseError("erro ao capturar lead", err)
	}

	uc.logActivity(ctx, lead.ID, nil, "Lead capturado pelo site")
	return lead, nil
}

func (uc *CreateLeadUseCase) logActivity(ctx context.Context, leadID string, userID *string, desc string) {
	if uc.Activities == nil {
		return
	}
	if err := uc.Activities.Create(ctx, entity.NewActivity(leadID, userID, desc)); err != nil {
		uc.Logger.Warn().Err(err).Str("lead_id", leadID).Msg("falha ao registrar atividade")
	}
}
