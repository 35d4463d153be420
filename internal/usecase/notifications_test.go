package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

func TestNotificationsAreScopedToSession(t *testing.T) {
	repo := &memNotifications{items: []entity.Notification{
		{ID: "N1", UserID: "U1"},
		{ID: "N2", UserID: "U2"},
		{ID: "N3", UserID: "U1", Read: true},
	}}
	uc := NewNotificationsUseCase(repo)
	ctx := context.Background()
	me := entity.Session{UserID: "U1"}

	list, err := uc.List(ctx, me, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	err = uc.SetRead(ctx, me, "N2", true)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)

	require.NoError(t, uc.SetRead(ctx, me, "N3", false))
	assert.False(t, repo.items[2].Read)

	n, err := uc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, repo.items[1].Read)
}

func TestLeadHistory(t *testing.T) {
	fus := &memFollowUps{items: []entity.FollowUp{{ID: "F1", LeadID: "L1"}, {ID: "F2", LeadID: "L2"}}}
	acts := &memActivities{}
	uc := NewLeadHistoryUseCase(fus, acts)
	ctx := context.Background()

	list, err := uc.FollowUpsOf(ctx, "L1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, uc.CompleteFollowUp(ctx, "F1"))
	assert.True(t, fus.items[0].Done)

	err = uc.CompleteFollowUp(ctx, "nope")
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)

	require.NoError(t, acts.Create(ctx, &entity.Activity{ID: "A1", LeadID: "L1"}))
	got, err := uc.ActivitiesOf(ctx, "L1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
