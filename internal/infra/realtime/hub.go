// Package realtime entrega notificações recém-criadas aos usuários conectados.
package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

const EventNotification = "notificacao"

type Event struct {
	Type    string              `json:"type"`
	Payload entity.Notification `json:"payload"`
}

type subscriber struct {
	ch   chan Event
	once sync.Once
}

// Hub mantém as assinaturas por usuário. Assinante lento perde eventos:
// o envio nunca bloqueia quem publica.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
	logger zerolog.Logger
}

func NewHub(buffer int, logger zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: map[string]map[*subscriber]struct{}{}, buffer: buffer, logger: logger}
}

// Subscribe devolve o canal de eventos do usuário e a função que encerra a assinatura.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = map[*subscriber]struct{}{}
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		s.once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], s)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(s.ch)
			h.mu.Unlock()
		})
	}
	return s.ch, cancel
}

func (h *Hub) Deliver(n entity.Notification) {
	ev := Event{Type: EventNotification, Payload: n}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[n.UserID] {
		select {
		case s.ch <- ev:
		default:
			h.logger.Warn().Str("user_id", n.UserID).Str("notification_id", n.ID).Msg("assinante lento, evento descartado")
		}
	}
}

// PublishNotification permite usar o hub direto como publisher quando não há RabbitMQ.
func (h *Hub) PublishNotification(_ context.Context, n entity.Notification) error {
	h.Deliver(n)
	return nil
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
