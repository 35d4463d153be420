package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommissionComputesAmount(t *testing.T) {
	c, err := NewCommission("lead-1", "user-1", decimal.RequireFromString("12345.67"), decimal.RequireFromString("0.10"))
	require.NoError(t, err)

	assert.Equal(t, CommissionPending, c.Status)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("1234.57")), c.Amount.String())
}

func TestNewCommissionValidation(t *testing.T) {
	_, err := NewCommission("lead-1", "", decimal.NewFromInt(100), decimal.RequireFromString("0.1"))
	assert.Error(t, err)

	_, err = NewCommission("lead-1", "u", decimal.Zero, decimal.RequireFromString("0.1"))
	assert.Error(t, err)

	_, err = NewCommission("lead-1", "u", decimal.NewFromInt(100), decimal.NewFromInt(2))
	assert.Error(t, err)
}

func TestCommissionTransitions(t *testing.T) {
	assert.True(t, CommissionPending.CanTransition(CommissionApproved))
	assert.True(t, CommissionApproved.CanTransition(CommissionPaid))
	assert.True(t, CommissionApproved.CanTransition(CommissionCancelled))
	assert.False(t, CommissionPending.CanTransition(CommissionPaid))
	assert.False(t, CommissionPaid.CanTransition(CommissionCancelled))
	assert.False(t, CommissionCancelled.CanTransition(CommissionPending))

	assert.ElementsMatch(t, []CommissionStatus{CommissionPending, CommissionApproved}, SourcesFor(CommissionCancelled))
	assert.Equal(t, []CommissionStatus{CommissionApproved}, SourcesFor(CommissionPaid))
}

func TestMeetingStatusIsOneWay(t *testing.T) {
	assert.True(t, MeetingScheduled.CanTransition(MeetingHeld))
	assert.True(t, MeetingScheduled.CanTransition(MeetingCancelled))
	assert.False(t, MeetingHeld.CanTransition(MeetingCancelled))
	assert.False(t, MeetingCancelled.CanTransition(MeetingScheduled))
}
