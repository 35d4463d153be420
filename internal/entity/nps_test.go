package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeClient(activatedAt time.Time) Client {
	return Client{ID: "c1", Name: "Cliente", Status: ClientActive, ActivatedAt: &activatedAt}
}

func TestIsEligibleForNPSRespectsFrequency(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	client := activeClient(now.AddDate(-1, 0, 0))

	twoMonthsAgo := now.AddDate(0, -2, 0)
	fourMonthsAgo := now.AddDate(0, -4, 0)

	assert.False(t, IsEligibleForNPS(client, &twoMonthsAgo, now, 3))
	assert.True(t, IsEligibleForNPS(client, &fourMonthsAgo, now, 3))
	assert.True(t, IsEligibleForNPS(client, nil, now, 3))
}

func TestIsEligibleForNPSRequiresActiveClientOlderThan30Days(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	recent := activeClient(now.AddDate(0, 0, -10))
	assert.False(t, IsEligibleForNPS(recent, nil, now, 3))

	inactive := activeClient(now.AddDate(0, -6, 0))
	inactive.Status = ClientInactive
	assert.False(t, IsEligibleForNPS(inactive, nil, now, 3))

	neverActivated := Client{Status: ClientActive}
	assert.False(t, IsEligibleForNPS(neverActivated, nil, now, 3))
}

func TestInvitationCheckSubmittable(t *testing.T) {
	now := time.Now()
	inv := NewNPSInvitation("c1", now)

	assert.Equal(t, now.Add(7*24*time.Hour), inv.ExpiresAt)
	assert.Len(t, inv.Token, 64)
	assert.NoError(t, inv.CheckSubmittable(now.Add(time.Hour)))

	responded := now
	inv.RespondedAt = &responded
	assert.ErrorIs(t, inv.CheckSubmittable(now.Add(time.Hour)), ErrAlreadyResponded)

	// expirado vence o "já respondido"
	assert.ErrorIs(t, inv.CheckSubmittable(now.Add(8*24*time.Hour)), ErrInvitationExpired)
}

func TestNewNPSResponseValidatesScore(t *testing.T) {
	inv := NewNPSInvitation("c1", time.Now())

	_, err := NewNPSResponse(inv, 11, "")
	assert.Error(t, err)
	_, err = NewNPSResponse(inv, -1, "")
	assert.Error(t, err)

	resp, err := NewNPSResponse(inv, 9, "  ótimo atendimento ")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, resp.InvitationID)
	assert.Equal(t, "ótimo atendimento", resp.Comment)
}

func TestRenderTemplate(t *testing.T) {
	out := RenderTemplate("Olá {{cliente_nome}}, responda: {{link_pesquisa}} ({{cliente_nome}})", "ACME", "https://x/nps/abc")
	assert.Equal(t, "Olá ACME, responda: https://x/nps/abc (ACME)", out)
}
