package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestNotifyTasksDueIsIdempotentWithinWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	due := now.Add(5*time.Hour + 30*time.Minute)
	later := now.Add(30 * time.Hour)

	tasks := &memTasks{items: []entity.Task{
		{ID: "T1", Title: "Enviar contrato", AssigneeID: strPtr("U1"), DueAt: &due},
		{ID: "T2", Title: "Sem responsável", DueAt: &due},
		{ID: "T3", Title: "Fora da janela", AssigneeID: strPtr("U1"), DueAt: &later},
		{ID: "T4", Title: "Concluída", AssigneeID: strPtr("U1"), DueAt: &due, Done: true},
	}}
	notifications := &memNotifications{}
	uc := NewNotifyTasksDueUseCase(tasks, notifications, NewNotifier(notifications, nil, nil, zerolog.Nop()), zerolog.Nop())
	uc.Now = fixedClock(now)

	first, err := uc.Execute(ctx)
	require.NoError(t, err)
	second, err := uc.Execute(ctx)
	require.NoError(t, err)

	assert.True(t, first.Success)
	assert.Equal(t, 1, first.Count(ItemNotified))
	assert.Equal(t, 0, second.Count(ItemNotified))
	assert.Equal(t, 1, second.Count(ItemAlreadyNotified))

	require.Len(t, notifications.items, 1)
	n := notifications.items[0]
	assert.Equal(t, "U1", n.UserID)
	assert.Equal(t, "T1", *n.ReferenceID)
	assert.Contains(t, n.Message, "vence em 5 horas")
	assert.Equal(t, "/tarefas", *n.Link)
}

func TestNotifyTasksDueRenotifiesAfterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	due := now.Add(2 * time.Hour)
	notifications := &memNotifications{items: []entity.Notification{{
		ID:          "old",
		UserID:      "U1",
		Type:        entity.NotificationTaskDue,
		ReferenceID: strPtr("T1"),
		CreatedAt:   now.Add(-25 * time.Hour),
	}}}
	tasks := &memTasks{items: []entity.Task{{ID: "T1", Title: "x", AssigneeID: strPtr("U1"), DueAt: &due}}}

	uc := NewNotifyTasksDueUseCase(tasks, notifications, NewNotifier(notifications, nil, nil, zerolog.Nop()), zerolog.Nop())
	uc.Now = fixedClock(now)

	out, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count(ItemNotified))
}

func TestNotifyTasksDuePublishFailureDoesNotFailItem(t *testing.T) {
	now := time.Now()
	due := now.Add(time.Hour)
	notifications := &memNotifications{}
	publisher := new(MockPublisher)
	publisher.On("PublishNotification", mock.Anything, mock.AnythingOfType("entity.Notification")).Return(errors.New("broker fora"))

	tasks := &memTasks{items: []entity.Task{{ID: "T1", Title: "x", AssigneeID: strPtr("U1"), DueAt: &due}}}
	uc := NewNotifyTasksDueUseCase(tasks, notifications, NewNotifier(notifications, publisher, nil, zerolog.Nop()), zerolog.Nop())
	uc.Now = fixedClock(now)

	out, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count(ItemNotified))
	publisher.AssertExpectations(t)
}

func TestMeetingRemindersPerParticipantOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	soon := entity.Meeting{
		ID:           "M1",
		Title:        "Kickoff",
		StartsAt:     now.Add(40*time.Minute + 20*time.Second),
		EndsAt:       now.Add(100 * time.Minute),
		Status:       entity.MeetingScheduled,
		Participants: []entity.Participant{{UserID: "U1"}, {UserID: "U2"}},
	}
	cancelled := soon
	cancelled.ID = "M2"
	cancelled.Status = entity.MeetingCancelled
	tomorrow := soon
	tomorrow.ID = "M3"
	tomorrow.StartsAt = now.Add(24 * time.Hour)

	notifications := &memNotifications{items: []entity.Notification{{
		ID:          "old",
		UserID:      "U2",
		Type:        entity.NotificationMeetingReminder,
		ReferenceID: strPtr("M1"),
		CreatedAt:   now.Add(-72 * time.Hour),
	}}}

	uc := NewNotifyMeetingRemindersUseCase(newMemMeetings(soon, cancelled, tomorrow), notifications,
		NewNotifier(notifications, nil, nil, zerolog.Nop()), zerolog.Nop())
	uc.Now = fixedClock(now)

	out, err := uc.Execute(ctx)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, 1, out.Count(ItemNotified))
	assert.Equal(t, 1, out.Count(ItemAlreadyNotified))

	created := notifications.items[len(notifications.items)-1]
	assert.Equal(t, "U1", created.UserID)
	assert.Contains(t, created.Message, "começa em 40 minutos")

	again, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Count(ItemNotified))
}
