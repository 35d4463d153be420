package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NPSRepository struct {
	DB *sql.DB
}

func NewNPSRepository(db *sql.DB) *NPSRepository {
	return &NPSRepository{DB: db}
}

func (r *NPSRepository) GetConfig(ctx context.Context) (*entity.NPSConfig, error) {
	query := `
		SELECT id, ativo, frequencia_meses, COALESCE(assunto_email, ''), COALESCE(corpo_email, '')
		FROM nps_config
		LIMIT 1
	`
	var c entity.NPSConfig
	err := r.DB.QueryRowContext(ctx, query).Scan(&c.ID, &c.Enabled, &c.FrequencyMonths, &c.EmailSubject, &c.EmailBody)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrNPSConfigNotFound
		}
		return nil, fmt.Errorf("erro ao ler nps_config: %w", err)
	}
	return &c, nil
}

func (r *NPSRepository) CreateInvitation(ctx context.Context, inv *entity.NPSInvitation) error {
	query := `
		INSERT INTO nps_envios (id, cliente_id, token, enviado_em, expira_em)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.DB.ExecContext(ctx, query, inv.ID, inv.ClientID, inv.Token, inv.SentAt, inv.ExpiresAt); err != nil {
		return fmt.Errorf("erro ao inserir convite: %w", err)
	}
	return nil
}

func (r *NPSRepository) FindInvitationByToken(ctx context.Context, token string) (*entity.NPSInvitation, error) {
	query := `
		SELECT e.id, e.cliente_id, e.token, e.enviado_em, e.expira_em, e.respondido_em, COALESCE(c.nome, '')
		FROM nps_envios e
		LEFT JOIN clientes c ON c.id = e.cliente_id
		WHERE e.token = $1
	`
	var inv entity.NPSInvitation
	err := r.DB.QueryRowContext(ctx, query, token).Scan(
		&inv.ID, &inv.ClientID, &inv.Token, &inv.SentAt, &inv.ExpiresAt, &inv.RespondedAt, &inv.ClientName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("erro ao buscar convite: %w", err)
	}
	return &inv, nil
}

// RecordResponse aplica o uso único e grava a resposta numa transação: se o
// insert falhar, a marcação é desfeita e o token continua válido.
func (r *NPSRepository) RecordResponse(ctx context.Context, resp *entity.NPSResponse, at time.Time) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE nps_envios SET respondido_em = $2
		WHERE id = $1 AND respondido_em IS NULL
	`, resp.InvitationID, at)
	if err != nil {
		return false, fmt.Errorf("erro ao marcar convite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO nps_respostas (id, envio_id, cliente_id, nota, comentario, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, resp.ID, resp.InvitationID, resp.ClientID, resp.Score, nullString(resp.Comment), resp.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("erro ao inserir resposta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("erro ao confirmar resposta: %w", err)
	}
	return true, nil
}
