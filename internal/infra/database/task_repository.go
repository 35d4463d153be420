package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]entity.Task, error) {
	query := `
		SELECT id, titulo, responsavel_id, projeto_id, data_vencimento, concluida
		FROM tarefas
		WHERE concluida = FALSE
			AND responsavel_id IS NOT NULL
			AND data_vencimento >= $1 AND data_vencimento < $2
		ORDER BY data_vencimento ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar tarefas: %w", err)
	}
	defer rows.Close()

	out := []entity.Task{}
	for rows.Next() {
		var t entity.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.AssigneeID, &t.ProjectID, &t.DueAt, &t.Done); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
