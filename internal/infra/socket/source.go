// Package socket adapts the chat service's websocket push channel into room
// events. Reconnection and backoff policy belong to the caller; a dropped
// connection simply ends Run.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"linkup/internal/domain/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
)

// EventHandler receives decoded room events.
type EventHandler interface {
	HandleRoomEvent(ev chat.RoomEvent)
}

// Source reads the event stream for one viewer.
type Source struct {
	url      string
	viewerID string
	handler  EventHandler
	log      *slog.Logger
}

// New builds a source for url on behalf of viewerID.
func New(url, viewerID string, handler EventHandler, log *slog.Logger) *Source {
	return &Source{url: url, viewerID: viewerID, handler: handler, log: log}
}

type registerPayload struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Run connects and pumps events until the context is cancelled or the
// connection drops. Envelopes that are not room events — messages, typing,
// feed traffic shares the pipe — are skipped; a single corrupt frame never
// stops the stream.
func (s *Source) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("socket: dial %s: %w", s.url, err)
	}
	defer conn.Close()

	register, _ := json.Marshal(registerPayload{Event: "register", Data: s.viewerID})
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, register); err != nil {
		return fmt.Errorf("socket: register viewer: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(ctx, conn, done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("socket: read: %w", err)
		}
		ev, err := chat.DecodeRoomEvent(raw)
		if err != nil {
			if s.log != nil {
				s.log.Debug("non-room frame skipped", "error", err)
			}
			continue
		}
		s.handler.HandleRoomEvent(ev)
	}
}

// keepAlive pings on a ticker and force-closes the connection when the
// context ends, which unblocks the read loop.
func (s *Source) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			conn.Close()
			return
		case <-done:
			return
		}
	}
}
