package querycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/infra/cache"
)

type card struct {
	ID    string  `json:"id"`
	Stage string  `json:"stage"`
	Value *string `json:"value,omitempty"`
}

func newCardCache() *Cache[[]card] {
	return New[[]card](cache.NewMemory(), "board", time.Minute)
}

func moveCard(id, stage string) func([]card) []card {
	return func(cards []card) []card {
		out := make([]card, len(cards))
		copy(out, cards)
		for i := range out {
			if out[i].ID == id {
				out[i].Stage = stage
			}
		}
		return out
	}
}

func TestMutationApplyRewritesCachedList(t *testing.T) {
	ctx := context.Background()
	c := newCardCache()
	require.NoError(t, c.Set(ctx, "sdr", []card{{ID: "a", Stage: "novo"}, {ID: "b", Stage: "novo"}}))

	m, err := Begin(ctx, c, "sdr")
	require.NoError(t, err)
	require.NoError(t, m.Apply(ctx, moveCard("a", "qualificado")))

	data, stale, found, err := c.Peek(ctx, "sdr")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, stale)
	assert.Equal(t, "qualificado", data[0].Stage)
	assert.Equal(t, "novo", data[1].Stage)
}

func TestMutationRevertRestoresExactSnapshot(t *testing.T) {
	ctx := context.Background()
	c := newCardCache()
	v := "1500.00"
	before := []card{{ID: "a", Stage: "negociacao", Value: &v}, {ID: "b", Stage: "proposta_enviada"}}
	require.NoError(t, c.Set(ctx, "closer", before))

	snapshot, _, _, err := c.Peek(ctx, "closer")
	require.NoError(t, err)

	m, err := Begin(ctx, c, "closer")
	require.NoError(t, err)
	require.NoError(t, m.Apply(ctx, moveCard("a", "perdido")))

	// servidor recusou
	require.NoError(t, m.Revert(ctx))

	after, stale, found, err := c.Peek(ctx, "closer")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, stale, "depois do revert a lista deve ser recarregada")
	assert.Equal(t, snapshot, after)
}

func TestMutationCommitInvalidates(t *testing.T) {
	ctx := context.Background()
	c := newCardCache()
	require.NoError(t, c.Set(ctx, "sdr", []card{{ID: "a", Stage: "novo"}}))

	m, _ := Begin(ctx, c, "sdr")
	require.NoError(t, m.Apply(ctx, moveCard("a", "em_contato")))
	require.NoError(t, m.Commit(ctx))

	loads := 0
	data, err := c.Fetch(ctx, "sdr", func(context.Context) ([]card, error) {
		loads++
		return []card{{ID: "a", Stage: "em_contato"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, "em_contato", data[0].Stage)

	assert.ErrorIs(t, m.Revert(ctx), ErrMutationDone)
}

func TestMutationWithoutCachedEntry(t *testing.T) {
	ctx := context.Background()
	c := newCardCache()

	m, err := Begin(ctx, c, "frios")
	require.NoError(t, err)
	require.NoError(t, m.Apply(ctx, moveCard("a", "reativacao")))
	require.NoError(t, m.Revert(ctx))

	_, _, found, err := c.Peek(ctx, "frios")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFetchUsesFreshEntry(t *testing.T) {
	ctx := context.Background()
	c := newCardCache()
	require.NoError(t, c.Set(ctx, "sdr", []card{{ID: "cached"}}))

	data, err := c.Fetch(ctx, "sdr", func(context.Context) ([]card, error) {
		return nil, errors.New("não deveria carregar")
	})
	require.NoError(t, err)
	assert.Equal(t, "cached", data[0].ID)
}

func TestFetchPropagatesLoadError(t *testing.T) {
	ctx := context.Background()
	c := newCardCache()

	_, err := c.Fetch(ctx, "sdr", func(context.Context) ([]card, error) {
		return nil, errors.New("db fora")
	})
	assert.EqualError(t, err, "db fora")
}

type failingSetStore struct {
	Store
}

func (failingSetStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis fora")
}

func TestFetchReportsRefreshError(t *testing.T) {
	ctx := context.Background()
	c := New[[]card](failingSetStore{Store: cache.NewMemory()}, "board", time.Minute)
	var gotKey string
	var gotErr error
	c.OnRefreshError = func(key string, err error) {
		gotKey, gotErr = key, err
	}

	data, err := c.Fetch(ctx, "sdr", func(context.Context) ([]card, error) {
		return []card{{ID: "a"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.Equal(t, "sdr", gotKey)
	assert.EqualError(t, gotErr, "redis fora")
}
