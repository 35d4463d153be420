package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "agendada"
	MeetingHeld      MeetingStatus = "realizada"
	MeetingCancelled MeetingStatus = "cancelada"
)

// CanTransition: agendada -> realizada | cancelada, sem volta.
func (s MeetingStatus) CanTransition(to MeetingStatus) bool {
	return s == MeetingScheduled && (to == MeetingHeld || to == MeetingCancelled)
}

type Participant struct {
	UserID    string `json:"usuario_id"`
	Confirmed *bool  `json:"confirmado"`
}

type Meeting struct {
	ID           string        `json:"id"`
	Title        string        `json:"titulo"`
	LeadID       *string       `json:"lead_id,omitempty"`
	ProjectID    *string       `json:"projeto_id,omitempty"`
	ClientID     *string       `json:"cliente_id,omitempty"`
	StartsAt     time.Time     `json:"data_inicio"`
	EndsAt       time.Time     `json:"data_fim"`
	OrganizerID  string        `json:"organizador_id"`
	Status       MeetingStatus `json:"status"`
	Participants []Participant `json:"participantes"`
	CreatedAt    time.Time     `json:"created_at"`
}

func NewMeeting(title, organizerID string, startsAt, endsAt time.Time, participantIDs []string) (*Meeting, error) {
	if !endsAt.After(startsAt) {
		return nil, errors.New("fim da reunião deve ser depois do início")
	}
	if organizerID == "" {
		return nil, errors.New("organizador é obrigatório")
	}

	participants := make([]Participant, 0, len(participantIDs))
	seen := map[string]bool{}
	for _, id := range participantIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, Participant{UserID: id})
	}

	return &Meeting{
		ID:           uuid.New().String(),
		Title:        title,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		OrganizerID:  organizerID,
		Status:       MeetingScheduled,
		Participants: participants,
		CreatedAt:    time.Now(),
	}, nil
}

type MeetingRepositoryInterface interface {
	Create(ctx context.Context, m *Meeting) error
	FindByID(ctx context.Context, id string) (*Meeting, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]Meeting, error)
	UpdateStatus(ctx context.Context, id string, status MeetingStatus) error
	SetConfirmation(ctx context.Context, meetingID, userID string, confirmed bool) error
}
