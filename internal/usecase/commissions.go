package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CommissionBatchInput struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
}

type CommissionBatchOutput struct {
	Status  entity.CommissionStatus `json:"status"`
	Updated int64                   `json:"atualizadas"`
}

type CommissionsUseCase struct {
	Repo   entity.CommissionRepositoryInterface
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewCommissionsUseCase(repo entity.CommissionRepositoryInterface, logger zerolog.Logger) *CommissionsUseCase {
	return &CommissionsUseCase{Repo: repo, Logger: logger}
}

func (uc *CommissionsUseCase) List(ctx context.Context, status string) ([]entity.Commission, error) {
	var filter *entity.CommissionStatus
	if status != "" {
		s := entity.CommissionStatus(status)
		if !s.Valid() {
			return nil, invalidField("status", "must be one of: pendente aprovada paga cancelada")
		}
		filter = &s
	}

	list, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, databaseError("erro ao listar comissões", err)
	}
	return list, nil
}

func (uc *CommissionsUseCase) Approve(ctx context.Context, input CommissionBatchInput) (*CommissionBatchOutput, error) {
	return uc.move(ctx, input, entity.CommissionApproved)
}

func (uc *CommissionsUseCase) Pay(ctx context.Context, input CommissionBatchInput) (*CommissionBatchOutput, error) {
	return uc.move(ctx, input, entity.CommissionPaid)
}

func (uc *CommissionsUseCase) Cancel(ctx context.Context, input CommissionBatchInput) (*CommissionBatchOutput, error) {
	return uc.move(ctx, input, entity.CommissionCancelled)
}

// move só altera as comissões cujo status atual permite chegar em to;
// as demais são ignoradas e ficam fora da contagem.
func (uc *CommissionsUseCase) move(ctx context.Context, input CommissionBatchInput, to entity.CommissionStatus) (*CommissionBatchOutput, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	n, err := uc.Repo.UpdateStatus(ctx, input.IDs, entity.SourcesFor(to), to, clock(uc.Now).now())
	if err != nil {
		return nil, databaseError("erro ao atualizar comissões", err)
	}

	uc.Logger.Info().Str("status", string(to)).Int("requested", len(input.IDs)).Int64("updated", n).Msg("comissões atualizadas")
	return &CommissionBatchOutput{Status: to, Updated: n}, nil
}
