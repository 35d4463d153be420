package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ClientRepository struct {
	DB *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	query := `
		INSERT INTO clientes (id, nome, email, telefone, status, data_ativacao, lead_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, nullString(c.Email), nullString(c.Phone), c.Status, c.ActivatedAt, c.LeadID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir cliente: %w", err)
	}
	return nil
}

// ListNPSCandidates traz os clientes ativos com a data do último convite.
// O filtro fino de elegibilidade fica em entity.IsEligibleForNPS.
func (r *ClientRepository) ListNPSCandidates(ctx context.Context) ([]entity.NPSCandidate, error) {
	query := `
		SELECT c.id, c.nome, COALESCE(c.email, ''), COALESCE(c.telefone, ''), c.status, c.data_ativacao,
			c.lead_id, c.created_at, MAX(e.enviado_em)
		FROM clientes c
		LEFT JOIN nps_envios e ON e.cliente_id = c.id
		WHERE c.status = 'ativo' AND c.data_ativacao IS NOT NULL
		GROUP BY c.id
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar clientes: %w", err)
	}
	defer rows.Close()

	out := []entity.NPSCandidate{}
	for rows.Next() {
		var cand entity.NPSCandidate
		c := &cand.Client
		err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.ActivatedAt, &c.LeadID, &c.CreatedAt, &cand.LastInviteAt)
		if err != nil {
			return nil, err
		}
		out = append(out, cand)
	}
	return out, rows.Err()
}
