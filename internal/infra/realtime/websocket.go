package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type WSHandler struct {
	Hub      *Hub
	Upgrader websocket.Upgrader
}

// NewWSHandler aceita só as origens do front. Lista vazia aceita qualquer origem.
func NewWSHandler(hub *Hub, origins []string) *WSHandler {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		Hub: hub,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Serve faz o upgrade e transmite os eventos do usuário até a conexão cair.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Hub.logger.Warn().Err(err).Msg("falha no upgrade do websocket")
		return
	}
	defer conn.Close()

	events, cancel := h.Hub.Subscribe(userID)
	defer cancel()

	// Leitura só para detectar fechamento e responder pongs
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
