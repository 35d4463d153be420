package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *entity.Activity) error {
	query := `
		INSERT INTO atividades_lead (id, lead_id, usuario_id, descricao, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.DB.ExecContext(ctx, query, a.ID, a.LeadID, a.UserID, a.Description, a.CreatedAt); err != nil {
		return fmt.Errorf("erro ao inserir atividade: %w", err)
	}
	return nil
}

func (r *ActivityRepository) ListByLead(ctx context.Context, leadID string) ([]entity.Activity, error) {
	query := `
		SELECT id, lead_id, usuario_id, descricao, created_at
		FROM atividades_lead
		WHERE lead_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar atividades: %w", err)
	}
	defer rows.Close()

	out := []entity.Activity{}
	for rows.Next() {
		var a entity.Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.UserID, &a.Description, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
