package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	l.id, l.nome, COALESCE(l.email, ''), COALESCE(l.telefone, ''), COALESCE(l.empresa, ''),
	l.origem_id, l.servico_id, l.sdr_responsavel_id, l.closer_responsavel_id,
	l.funil_atual, l.etapa_sdr, l.etapa_closer, l.etapa_frios,
	l.data_agendamento, l.motivo_perda_id, l.data_perda, l.motivo_descarte,
	l.reativacoes, l.valor_estimado, COALESCE(l.observacoes, ''), l.created_at, l.updated_at`

// O responsável exibido é o do funil atual: closer no funil closer, SDR nos demais.
const leadSelect = `
	SELECT ` + leadColumns + `,
		COALESCE(o.nome, ''), COALESCE(s.nome, ''), COALESCE(p.nome, '')
	FROM leads l
	LEFT JOIN origens o ON o.id = l.origem_id
	LEFT JOIN servicos s ON s.id = l.servico_id
	LEFT JOIN profiles p ON p.id = CASE WHEN l.funil_atual = 'closer'
		THEN l.closer_responsavel_id ELSE l.sdr_responsavel_id END`

func leadDest(l *entity.Lead) []any {
	return []any{
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company,
		&l.OriginID, &l.ServiceID, &l.SDRID, &l.CloserID,
		&l.Funnel, &l.StageSDR, &l.StageCloser, &l.StageFrios,
		&l.ScheduledAt, &l.LossReasonID, &l.LostAt, &l.DiscardReason,
		&l.Reactivations, &l.EstimatedValue, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	}
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	dest := append(leadDest(&l), &l.OriginName, &l.ServiceName, &l.ResponsibleName)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, nome, email, telefone, empresa, origem_id, servico_id,
			sdr_responsavel_id, closer_responsavel_id, funil_atual,
			etapa_sdr, etapa_closer, etapa_frios, reativacoes, valor_estimado,
			observacoes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		nullString(lead.Company),
		lead.OriginID,
		lead.ServiceID,
		lead.SDRID,
		lead.CloserID,
		lead.Funnel,
		lead.StageSDR,
		lead.StageCloser,
		lead.StageFrios,
		lead.Reactivations,
		lead.EstimatedValue,
		nullString(lead.Notes),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.ErrLeadAlreadyExists
		}
		return fmt.Errorf("erro ao inserir lead: %w", err)
	}
	return nil
}

// Upsert grava pelo email. Lead já existente só tem nome e telefone atualizados;
// funil e etapa continuam onde estavam.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads AS l (id, nome, email, telefone, funil_atual, etapa_sdr, reativacoes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, NOW(), NOW())
		ON CONFLICT (email)
		DO UPDATE SET
			nome = COALESCE(NULLIF(EXCLUDED.nome, ''), l.nome),
			telefone = COALESCE(EXCLUDED.telefone, l.telefone),
			updated_at = NOW()
		RETURNING ` + leadColumns

	err := r.DB.QueryRowContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		nullString(lead.Phone),
		lead.Funnel,
		lead.StageSDR,
	).Scan(leadDest(lead)...)
	if err != nil {
		return fmt.Errorf("erro ao capturar lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := scanLead(r.DB.QueryRowContext(ctx, leadSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, fmt.Errorf("erro ao buscar lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) ListByFunnel(ctx context.Context, funnel entity.Funnel) ([]entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, leadSelect+` WHERE l.funil_atual = $1 ORDER BY l.updated_at DESC`, funnel)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar leads: %w", err)
	}
	defer rows.Close()

	leads := []entity.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao ler lead: %w", err)
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

// Update grava o estado de funil do lead numa única linha.
func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			closer_responsavel_id = $2,
			funil_atual = $3,
			etapa_sdr = $4,
			etapa_closer = $5,
			etapa_frios = $6,
			data_agendamento = $7,
			motivo_perda_id = $8,
			data_perda = $9,
			motivo_descarte = $10,
			reativacoes = $11,
			valor_estimado = $12,
			observacoes = $13,
			updated_at = $14
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.CloserID,
		lead.Funnel,
		lead.StageSDR,
		lead.StageCloser,
		lead.StageFrios,
		lead.ScheduledAt,
		lead.LossReasonID,
		lead.LostAt,
		lead.DiscardReason,
		lead.Reactivations,
		lead.EstimatedValue,
		nullString(lead.Notes),
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao atualizar lead: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}
