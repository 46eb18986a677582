package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aretw0/dailynotes/pkg/adapters/broadcast"
	"github.com/aretw0/dailynotes/pkg/core"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)


// Message is one frame of the /ws stream.
type Message struct {
	Event   string `json:"event"`
	Payload string `json:"payload"`
}

// handleWS subscribes the connecting window and streams every new
// Aggregate to it, starting with the current one.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("window")
	if window == "" {
		window = core.WindowMain
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.origins.allows(r.Header.Get("Origin"))
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "window", window, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, err := s.hub.Subscribe(ctx, window)
	if err != nil {
		s.logger.Error("subscribe failed", "window", window, "error", err)
		return
	}
	s.logger.Debug("window connected", "window", window)
	defer s.logger.Debug("window disconnected", "window", window)

	go s.readPump(conn, cancel)

	current, err := s.store.ReadToday(ctx)
	if err != nil {
		s.logger.Error("initial read failed", "window", window, "error", err)
		return
	}
	if err := writeMessage(conn, current); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case payload, ok := <-updates:
			if !ok {
				return
			}
			if err := writeMessage(conn, payload); err != nil {
				s.logger.Debug("websocket write failed", "window", window, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames and cancels the stream when the peer goes away.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed unexpectedly", "error", err)
			}
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, payload string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Message{Event: broadcast.EventNoteUpdated, Payload: payload})
}
