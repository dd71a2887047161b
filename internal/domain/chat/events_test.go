package chat

import (
	"errors"
	"testing"
)

func TestDecodeRoomEvent(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": "evt-1",
		"event": "room:created",
		"data": {"id": "r1", "user_ids": ["a", "b"], "is_personal": true, "created_at": "2026-03-01T10:00:00Z"}
	}`)
	ev, err := DecodeRoomEvent(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.ID != "evt-1" || ev.Kind != EventRoomCreated {
		t.Fatalf("envelope mismatch: %+v", ev)
	}
	if ev.Room.ID != "r1" || !ev.Room.IsPersonal || len(ev.Room.UserIDs) != 2 {
		t.Fatalf("room payload mismatch: %+v", ev.Room)
	}
}

func TestDecodeRoomEventRejectsOtherKinds(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"event": "message:created", "data": {}}`,
		`{"event": "", "data": {}}`,
		`not json at all`,
		`{"event": "room:updated", "data": "not an object"}`,
	} {
		_, err := DecodeRoomEvent([]byte(raw))
		if !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("DecodeRoomEvent(%q) err=%v want ErrMalformedEvent", raw, err)
		}
	}
}

func TestDecodeRoomEventWithoutEnvelopeID(t *testing.T) {
	t.Parallel()

	ev, err := DecodeRoomEvent([]byte(`{"event": "room:updated", "data": {"id": "r9"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.ID != "" || ev.Room.ID != "r9" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
