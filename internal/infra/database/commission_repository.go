package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CommissionRepository struct {
	DB *sql.DB
}

func NewCommissionRepository(db *sql.DB) *CommissionRepository {
	return &CommissionRepository{DB: db}
}

func (r *CommissionRepository) Create(ctx context.Context, c *entity.Commission) error {
	query := `
		INSERT INTO comissoes (id, lead_id, cliente_id, colaborador_id, valor_venda, percentual, valor, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.LeadID, c.ClientID, c.CollaboratorID, c.DealValue, c.Rate, c.Amount, c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir comissão: %w", err)
	}
	return nil
}

func (r *CommissionRepository) List(ctx context.Context, status *entity.CommissionStatus) ([]entity.Commission, error) {
	query := `
		SELECT id, lead_id, cliente_id, colaborador_id, valor_venda, percentual, valor, status,
			aprovada_em, paga_em, created_at
		FROM comissoes
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar comissões: %w", err)
	}
	defer rows.Close()

	out := []entity.Commission{}
	for rows.Next() {
		var c entity.Commission
		err := rows.Scan(&c.ID, &c.LeadID, &c.ClientID, &c.CollaboratorID, &c.DealValue, &c.Rate, &c.Amount,
			&c.Status, &c.ApprovedAt, &c.PaidAt, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateStatus aplica a transição em lote numa única instrução; o filtro por
// status de origem impede transições inválidas.
func (r *CommissionRepository) UpdateStatus(ctx context.Context, ids []string, from []entity.CommissionStatus, to entity.CommissionStatus, at time.Time) (int64, error) {
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}

	query := `
		UPDATE comissoes SET
			status = $1,
			aprovada_em = CASE WHEN $1 = 'aprovada' THEN $2 ELSE aprovada_em END,
			paga_em = CASE WHEN $1 = 'paga' THEN $2 ELSE paga_em END
		WHERE id = ANY($3) AND status = ANY($4)
	`
	res, err := r.DB.ExecContext(ctx, query, to, at, pq.Array(ids), pq.Array(sources))
	if err != nil {
		return 0, fmt.Errorf("erro ao atualizar comissões: %w", err)
	}
	return res.RowsAffected()
}
