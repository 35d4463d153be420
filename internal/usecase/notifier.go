package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

// Notifier grava a notificação e avisa o canal em tempo real.
// Falha na publicação não desfaz a gravação.
type Notifier struct {
	Repo      entity.NotificationRepositoryInterface
	Publisher entity.NotificationPublisher
	Metrics   Recorder
	Logger    zerolog.Logger
}

func NewNotifier(repo entity.NotificationRepositoryInterface, publisher entity.NotificationPublisher, metrics Recorder, logger zerolog.Logger) *Notifier {
	return &Notifier{Repo: repo, Publisher: publisher, Metrics: metrics, Logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, notif *entity.Notification) error {
	if err := n.Repo.Create(ctx, notif); err != nil {
		return fmt.Errorf("erro ao criar notificação: %w", err)
	}
	orNop(n.Metrics).RecordNotification(string(notif.Type))

	if n.Publisher == nil {
		return nil
	}
	if err := n.Publisher.PublishNotification(ctx, *notif); err != nil {
		n.Logger.Warn().Err(err).
			Str("notification_id", notif.ID).
			Str("user_id", notif.UserID).
			Msg("falha ao publicar notificação em tempo real")
	}
	return nil
}
