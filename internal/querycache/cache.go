// Package querycache guarda listas consultadas (ex: leads de um funil) num Store
// de bytes e implementa o protocolo otimista snapshot -> apply -> commit | revert.
//
// Invalidar não apaga a entrada: ela fica marcada como stale e a próxima
// leitura via Fetch busca de novo na fonte.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store é o backend de bytes (Redis, memória, noop).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type entry[T any] struct {
	Data  T    `json:"data"`
	Stale bool `json:"stale"`
}

type Cache[T any] struct {
	store  Store
	prefix string
	ttl    time.Duration

	// OnRefreshError recebe falhas ao regravar a entrada depois de um Fetch.
	// A leitura já tem o dado da fonte, então o erro não volta para quem chamou.
	OnRefreshError func(key string, err error)
}

func New[T any](store Store, prefix string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{store: store, prefix: prefix, ttl: ttl}
}

func (c *Cache[T]) key(k string) string {
	return c.prefix + ":" + k
}

func (c *Cache[T]) read(ctx context.Context, key string) (*entry[T], []byte, error) {
	raw, ok, err := c.store.Get(ctx, c.key(key))
	if err != nil || !ok {
		return nil, nil, err
	}
	var e entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, nil, fmt.Errorf("querycache: entrada corrompida em %s: %w", key, err)
	}
	return &e, raw, nil
}

func (c *Cache[T]) write(ctx context.Context, key string, e entry[T]) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.key(key), raw, c.ttl)
}

// Peek devolve a entrada como está, inclusive stale.
func (c *Cache[T]) Peek(ctx context.Context, key string) (data T, stale bool, found bool, err error) {
	e, _, err := c.read(ctx, key)
	if err != nil || e == nil {
		return data, false, false, err
	}
	return e.Data, e.Stale, true, nil
}

func (c *Cache[T]) Set(ctx context.Context, key string, data T) error {
	return c.write(ctx, key, entry[T]{Data: data})
}

// Invalidate marca a entrada como stale. Sem entrada, não faz nada.
func (c *Cache[T]) Invalidate(ctx context.Context, key string) error {
	e, _, err := c.read(ctx, key)
	if err != nil || e == nil {
		return err
	}
	e.Stale = true
	return c.write(ctx, key, *e)
}

// Fetch lê do cache e, se ausente ou stale, recarrega com load.
// Falha de leitura no cache cai direto no load.
func (c *Cache[T]) Fetch(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if e, _, err := c.read(ctx, key); err == nil && e != nil && !e.Stale {
		return e.Data, nil
	}

	data, err := load(ctx)
	if err != nil {
		return data, err
	}
	if err := c.Set(ctx, key, data); err != nil && c.OnRefreshError != nil {
		c.OnRefreshError(key, err)
	}
	return data, nil
}
