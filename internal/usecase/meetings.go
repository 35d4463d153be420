package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type UpdateMeetingStatusInput struct {
	Status entity.MeetingStatus `json:"status" validate:"required,oneof=realizada cancelada"`
}

type ConfirmMeetingInput struct {
	Confirmed *bool `json:"confirmado" validate:"required"`
}

type MeetingsUseCase struct {
	Repo entity.MeetingRepositoryInterface
}

func NewMeetingsUseCase(repo entity.MeetingRepositoryInterface) *MeetingsUseCase {
	return &MeetingsUseCase{Repo: repo}
}

func (uc *MeetingsUseCase) UpdateStatus(ctx context.Context, id string, input UpdateMeetingStatusInput) (*entity.Meeting, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	m, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Status.CanTransition(input.Status) {
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: "reunião " + string(m.Status) + " não pode ir para " + string(input.Status),
			Err:     entity.ErrInvalidTransition,
		}
	}

	if err := uc.Repo.UpdateStatus(ctx, id, input.Status); err != nil {
		return nil, databaseError("erro ao atualizar reunião", err)
	}
	m.Status = input.Status
	return m, nil
}

// Confirm registra a presença do usuário da sessão. Só participantes confirmam.
func (uc *MeetingsUseCase) Confirm(ctx context.Context, session entity.Session, id string, input ConfirmMeetingInput) error {
	if errs := validateStruct(input); len(errs) > 0 {
		return validationFailed(errs)
	}

	m, err := uc.find(ctx, id)
	if err != nil {
		return err
	}

	participant := false
	for _, p := range m.Participants {
		if p.UserID == session.UserID {
			participant = true
			break
		}
	}
	if !participant {
		return &DomainError{Code: CodeForbidden, Message: "usuário não participa da reunião"}
	}

	if err := uc.Repo.SetConfirmation(ctx, id, session.UserID, *input.Confirmed); err != nil {
		return databaseError("erro ao confirmar presença", err)
	}
	return nil
}

func (uc *MeetingsUseCase) find(ctx context.Context, id string) (*entity.Meeting, error) {
	m, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrMeetingNotFound) {
			return nil, notFound(err)
		}
		return nil, databaseError("erro ao buscar reunião", err)
	}
	return m, nil
}
