package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Event kinds pushed by the real-time layer. Delivery is at-least-once and
// unordered relative to REST responses.
const (
	EventRoomCreated = "room:created"
	EventRoomUpdated = "room:updated"
)

var (
	// ErrMalformedEvent marks a pushed event that cannot be applied (bad
	// JSON, unknown kind, or a room payload without an id).
	ErrMalformedEvent = errors.New("chat: malformed room event")
)

// RoomEvent is a decoded real-time notification about a single room.
type RoomEvent struct {
	// ID identifies the envelope for at-least-once dedup. May be empty when
	// the transport does not stamp envelopes.
	ID   string
	Kind string
	Room RoomRecord
}

type eventEnvelope struct {
	ID    string          `json:"id,omitempty"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeRoomEvent parses a raw envelope from the socket or broker. Events of
// other kinds (messages, typing, feed) come through the same pipe and are not
// this subsystem's business; they are reported as ErrMalformedEvent so the
// caller can skip them.
func DecodeRoomEvent(raw []byte) (RoomEvent, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return RoomEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Event != EventRoomCreated && env.Event != EventRoomUpdated {
		return RoomEvent{}, fmt.Errorf("%w: unexpected kind %q", ErrMalformedEvent, env.Event)
	}
	var room RoomRecord
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &room); err != nil {
			return RoomEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
	}
	return RoomEvent{ID: env.ID, Kind: env.Event, Room: room}, nil
}
