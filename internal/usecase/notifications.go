package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const DefaultNotificationLimit = 50

// NotificationsUseCase expõe as notificações do usuário da sessão.
type NotificationsUseCase struct {
	Repo entity.NotificationRepositoryInterface
}

func NewNotificationsUseCase(repo entity.NotificationRepositoryInterface) *NotificationsUseCase {
	return &NotificationsUseCase{Repo: repo}
}

// List traz não lidas primeiro e, dentro de cada grupo, as mais recentes.
func (uc *NotificationsUseCase) List(ctx context.Context, session entity.Session, limit int) ([]entity.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = DefaultNotificationLimit
	}
	list, err := uc.Repo.ListByUser(ctx, session.UserID, limit)
	if err != nil {
		return nil, databaseError("erro ao listar notificações", err)
	}
	return list, nil
}

func (uc *NotificationsUseCase) SetRead(ctx context.Context, session entity.Session, id string, read bool) error {
	if err := uc.Repo.SetRead(ctx, id, session.UserID, read); err != nil {
		if errors.Is(err, entity.ErrNotificationNotFound) {
			return notFound(err)
		}
		return databaseError("erro ao atualizar notificação", err)
	}
	return nil
}

func (uc *NotificationsUseCase) MarkAllRead(ctx context.Context, session entity.Session) (int64, error) {
	n, err := uc.Repo.MarkAllRead(ctx, session.UserID)
	if err != nil {
		return 0, databaseError("erro ao marcar notificações", err)
	}
	return n, nil
}
