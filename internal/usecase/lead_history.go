package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// LeadHistoryUseCase reúne as leituras de follow-ups e atividades de um lead.
type LeadHistoryUseCase struct {
	FollowUps  entity.FollowUpRepositoryInterface
	Activities entity.ActivityRepositoryInterface
}

func NewLeadHistoryUseCase(followUps entity.FollowUpRepositoryInterface, activities entity.ActivityRepositoryInterface) *LeadHistoryUseCase {
	return &LeadHistoryUseCase{FollowUps: followUps, Activities: activities}
}

func (uc *LeadHistoryUseCase) FollowUpsOf(ctx context.Context, leadID string) ([]entity.FollowUp, error) {
	list, err := uc.FollowUps.ListByLead(ctx, leadID)
	if err != nil {
		return nil, databaseError("erro ao listar follow-ups", err)
	}
	return list, nil
}

// CompleteFollowUp só marca o flag de concluído.
func (uc *LeadHistoryUseCase) CompleteFollowUp(ctx context.Context, id string) error {
	if err := uc.FollowUps.Complete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrFollowUpNotFound) {
			return notFound(err)
		}
		return databaseError("erro ao concluir follow-up", err)
	}
	return nil
}

func (uc *LeadHistoryUseCase) ActivitiesOf(ctx context.Context, leadID string) ([]entity.Activity, error) {
	list, err := uc.Activities.ListByLead(ctx, leadID)
	if err != nil {
		return nil, databaseError("erro ao listar atividades", err)
	}
	return list, nil
}
