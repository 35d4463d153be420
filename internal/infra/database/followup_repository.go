package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type FollowUpRepository struct {
	DB *sql.DB
}

func NewFollowUpRepository(db *sql.DB) *FollowUpRepository {
	return &FollowUpRepository{DB: db}
}

func (r *FollowUpRepository) Create(ctx context.Context, f *entity.FollowUp) error {
	query := `
		INSERT INTO follow_ups (id, lead_id, data_programada, descricao, concluido, criado_por, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, f.ID, f.LeadID, f.ScheduledFor, f.Description, f.Done, f.CreatedBy, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir follow-up: %w", err)
	}
	return nil
}

func (r *FollowUpRepository) ListByLead(ctx context.Context, leadID string) ([]entity.FollowUp, error) {
	query := `
		SELECT id, lead_id, data_programada, descricao, concluido, criado_por, created_at
		FROM follow_ups
		WHERE lead_id = $1
		ORDER BY data_programada ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar follow-ups: %w", err)
	}
	defer rows.Close()

	out := []entity.FollowUp{}
	for rows.Next() {
		var f entity.FollowUp
		if err := rows.Scan(&f.ID, &f.LeadID, &f.ScheduledFor, &f.Description, &f.Done, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FollowUpRepository) Complete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE follow_ups SET concluido = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("erro ao concluir follow-up: %w", err)
	}
	return expectOne(res, entity.ErrFollowUpNotFound)
}
