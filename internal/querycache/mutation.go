package querycache

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrMutationDone = errors.New("querycache: mutação já finalizada")

// Mutation é uma alteração otimista sobre uma entrada do cache. Uso:
//
//	m, _ := querycache.Begin(ctx, cache, key)
//	m.Apply(ctx, rewrite)
//	if err := mutate(); err != nil { m.Revert(ctx) } else { m.Commit(ctx) }
//
// Não há controle de concorrência entre mutações da mesma chave.
type Mutation[T any] struct {
	cache *Cache[T]
	key   string

	snapshot []byte
	had      bool
	done     bool
}

// Begin tira o snapshot da entrada atual.
func Begin[T any](ctx context.Context, c *Cache[T], key string) (*Mutation[T], error) {
	raw, ok, err := c.store.Get(ctx, c.key(key))
	if err != nil {
		return nil, err
	}
	return &Mutation[T]{cache: c, key: key, snapshot: raw, had: ok}, nil
}

// Apply reescreve o valor em cache com fn. Sem entrada em cache não há o que reescrever.
func (m *Mutation[T]) Apply(ctx context.Context, fn func(T) T) error {
	if m.done {
		return ErrMutationDone
	}
	if !m.had {
		return nil
	}

	var e entry[T]
	if err := json.Unmarshal(m.snapshot, &e); err != nil {
		return err
	}
	e.Data = fn(e.Data)
	return m.cache.write(ctx, m.key, e)
}

// Commit: o servidor confirmou, então a entrada fica stale para ser recarregada.
func (m *Mutation[T]) Commit(ctx context.Context) error {
	if m.done {
		return ErrMutationDone
	}
	m.done = true
	return m.cache.Invalidate(ctx, m.key)
}

// Revert restaura exatamente o snapshot e marca como stale.
func (m *Mutation[T]) Revert(ctx context.Context) error {
	if m.done {
		return ErrMutationDone
	}
	m.done = true

	if !m.had {
		return m.cache.store.Delete(ctx, m.cache.key(m.key))
	}

	var e entry[T]
	if err := json.Unmarshal(m.snapshot, &e); err != nil {
		return err
	}
	e.Stale = true
	return m.cache.write(ctx, m.key, e)
}
