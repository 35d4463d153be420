package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTaskDue         NotificationType = "tarefa_vencendo"
	NotificationMeetingReminder NotificationType = "lembrete_reuniao"
	NotificationLeadAssigned    NotificationType = "lead_atribuido"
)

type Notification struct {
	ID          string           `json:"id"`
	UserID      string           `json:"usuario_id"`
	Type        NotificationType `json:"tipo"`
	Title       string           `json:"titulo"`
	Message     string           `json:"mensagem"`
	Link        *string          `json:"link,omitempty"`
	ReferenceID *string          `json:"referencia_id,omitempty"`
	Read        bool             `json:"lida"`
	CreatedAt   time.Time        `json:"created_at"`
}

func NewNotification(userID string, t NotificationType, title, message string, link, referenceID *string) *Notification {
	return &Notification{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        t,
		Title:       title,
		Message:     message,
		Link:        link,
		ReferenceID: referenceID,
		CreatedAt:   time.Now(),
	}
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *Notification) error
	// ExistsSince considera só notificações criadas a partir de since.
	ExistsSince(ctx context.Context, userID string, t NotificationType, referenceID string, since time.Time) (bool, error)
	Exists(ctx context.Context, userID string, t NotificationType, referenceID string) (bool, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	SetRead(ctx context.Context, id, userID string, read bool) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// NotificationPublisher entrega notificações recém-criadas ao canal em tempo real.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n Notification) error
}
