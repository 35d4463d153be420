package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type MeetingRepository struct {
	DB *sql.DB
}

func NewMeetingRepository(db *sql.DB) *MeetingRepository {
	return &MeetingRepository{DB: db}
}

// Create grava a reunião e os participantes na mesma transação.
func (r *MeetingRepository) Create(ctx context.Context, m *entity.Meeting) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reunioes (id, titulo, lead_id, projeto_id, cliente_id, data_inicio, data_fim, organizador_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, m.ID, m.Title, m.LeadID, m.ProjectID, m.ClientID, m.StartsAt, m.EndsAt, m.OrganizerID, m.Status, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir reunião: %w", err)
	}

	if len(m.Participants) > 0 {
		ids := make([]string, len(m.Participants))
		for i, p := range m.Participants {
			ids[i] = p.UserID
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reuniao_participantes (reuniao_id, usuario_id)
			SELECT $1, unnest($2::uuid[])
		`, m.ID, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("erro ao inserir participantes: %w", err)
		}
	}

	return tx.Commit()
}

const meetingSelect = `
	SELECT id, titulo, lead_id, projeto_id, cliente_id, data_inicio, data_fim, organizador_id, status, created_at
	FROM reunioes`

func scanMeeting(row rowScanner) (*entity.Meeting, error) {
	var m entity.Meeting
	err := row.Scan(&m.ID, &m.Title, &m.LeadID, &m.ProjectID, &m.ClientID, &m.StartsAt, &m.EndsAt,
		&m.OrganizerID, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Participants = []entity.Participant{}
	return &m, nil
}

func (r *MeetingRepository) FindByID(ctx context.Context, id string) (*entity.Meeting, error) {
	m, err := scanMeeting(r.DB.QueryRowContext(ctx, meetingSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("erro ao buscar reunião: %w", err)
	}

	if err := r.loadParticipants(ctx, map[string]*entity.Meeting{m.ID: m}); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MeetingRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]entity.Meeting, error) {
	rows, err := r.DB.QueryContext(ctx, meetingSelect+`
		WHERE status = 'agendada' AND data_inicio >= $1 AND data_inicio < $2
		ORDER BY data_inicio ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar reuniões: %w", err)
	}
	defer rows.Close()

	var list []*entity.Meeting
	byID := map[string]*entity.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadParticipants(ctx, byID); err != nil {
		return nil, err
	}

	out := make([]entity.Meeting, len(list))
	for i, m := range list {
		out[i] = *m
	}
	return out, nil
}

func (r *MeetingRepository) loadParticipants(ctx context.Context, byID map[string]*entity.Meeting) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT reuniao_id, usuario_id, confirmado
		FROM reuniao_participantes
		WHERE reuniao_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("erro ao listar participantes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var meetingID string
		var p entity.Participant
		if err := rows.Scan(&meetingID, &p.UserID, &p.Confirmed); err != nil {
			return err
		}
		if m, ok := byID[meetingID]; ok {
			m.Participants = append(m.Participants, p)
		}
	}
	return rows.Err()
}

func (r *MeetingRepository) UpdateStatus(ctx context.Context, id string, status entity.MeetingStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE reunioes SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("erro ao atualizar reunião: %w", err)
	}
	return expectOne(res, entity.ErrMeetingNotFound)
}

func (r *MeetingRepository) SetConfirmation(ctx context.Context, meetingID, userID string, confirmed bool) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE reuniao_participantes SET confirmado = $3
		WHERE reuniao_id = $1 AND usuario_id = $2
	`, meetingID, userID, confirmed)
	if err != nil {
		return fmt.Errorf("erro ao confirmar presença: %w", err)
	}
	return expectOne(res, entity.ErrMeetingNotFound)
}
