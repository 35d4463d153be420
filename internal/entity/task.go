package entity

import (
	"context"
	"time"
)

type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"titulo"`
	AssigneeID *string    `json:"responsavel_id,omitempty"`
	ProjectID  *string    `json:"projeto_id,omitempty"`
	DueAt      *time.Time `json:"data_vencimento,omitempty"`
	Done       bool       `json:"concluida"`
}

type TaskRepositoryInterface interface {
	// ListDueBetween retorna tarefas não concluídas, com responsável, vencendo em [from, to).
	ListDueBetween(ctx context.Context, from, to time.Time) ([]Task, error)
}
