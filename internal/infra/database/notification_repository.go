package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notificacoes (id, usuario_id, tipo, titulo, mensagem, link, referencia_id, lida, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Link, n.ReferenceID, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir notificação: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ExistsSince(ctx context.Context, userID string, t entity.NotificationType, referenceID string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notificacoes
			WHERE usuario_id = $1 AND tipo = $2 AND referencia_id = $3 AND created_at >= $4
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, t, referenceID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("erro ao verificar notificação: %w", err)
	}
	return exists, nil
}

func (r *NotificationRepository) Exists(ctx context.Context, userID string, t entity.NotificationType, referenceID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notificacoes
			WHERE usuario_id = $1 AND tipo = $2 AND referencia_id = $3
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, t, referenceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("erro ao verificar notificação: %w", err)
	}
	return exists, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	query := `
		SELECT id, usuario_id, tipo, titulo, mensagem, link, referencia_id, lida, created_at
		FROM notificacoes
		WHERE usuario_id = $1
		ORDER BY lida ASC, created_at DESC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar notificações: %w", err)
	}
	defer rows.Close()

	out := []entity.Notification{}
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.ReferenceID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) SetRead(ctx context.Context, id, userID string, read bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE notificacoes SET lida = $3 WHERE id = $1 AND usuario_id = $2`, id, userID, read)
	if err != nil {
		return fmt.Errorf("erro ao atualizar notificação: %w", err)
	}
	return expectOne(res, entity.ErrNotificationNotFound)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE notificacoes SET lida = TRUE WHERE usuario_id = $1 AND lida = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("erro ao marcar notificações: %w", err)
	}
	return res.RowsAffected()
}
