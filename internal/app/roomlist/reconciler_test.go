package roomlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkup/internal/domain/chat"
)

func TestApplyCreatedIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	created := room("a", 10, "v")
	r.ApplyCreated("v", created)
	r.ApplyCreated("v", created)

	require.Equal(t, 1, s.Len())
	require.Equal(t, []string{"a"}, ids(s.Rooms()))
}

func TestApplyCreatedDelegatesToUpdateForKnownID(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	r.ApplyCreated("v", room("a", 10, "v"))
	// Redelivered created event carries a newer snapshot where the viewer
	// was removed; it must behave exactly like an update.
	r.ApplyCreated("v", room("a", 20, "other"))

	require.Equal(t, 0, s.Len())
}

func TestApplyUpdatedEvictsWhenViewerRemoved(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	r.ApplyCreated("v", room("a", 10, "v", "o"))
	require.Equal(t, 1, s.Len())

	r.ApplyUpdated("v", room("a", 20, "o"))
	require.Equal(t, 0, s.Len())
}

func TestApplyUpdatedIgnoresUnseenRooms(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	// Insertion is reserved for created events.
	r.ApplyUpdated("v", room("unseen", 10, "v"))
	require.Equal(t, 0, s.Len())
}

func TestApplyUpdatedReplacesAndResorts(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	r.ApplyCreated("v", room("a", 10, "v"))
	r.ApplyCreated("v", room("b", 20, "v"))
	require.Equal(t, []string{"b", "a"}, ids(s.Rooms()))

	r.ApplyUpdated("v", room("a", 30, "v"))
	rooms := s.Rooms()
	require.Equal(t, []string{"a", "b"}, ids(rooms))
	require.Equal(t, storeEpoch.Add(30*time.Minute), rooms[0].SortKey())
}

func TestMalformedEventsDroppedSilently(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	r.ApplyCreated("v", chat.RoomRecord{})
	r.ApplyUpdated("v", chat.RoomRecord{})
	r.Apply("v", chat.RoomEvent{Kind: "room:boom", Room: room("a", 1, "v")})

	require.Equal(t, 0, s.Len())
}

func TestNoViewerNoMutation(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	r.ApplyCreated("", room("a", 10, "v"))
	r.ApplyUpdated("", room("a", 10, "v"))
	require.Equal(t, 0, s.Len())
}

func TestApplyDispatchesByKind(t *testing.T) {
	t.Parallel()

	s := NewStore()
	r := NewReconciler(s, nil)

	r.Apply("v", chat.RoomEvent{Kind: chat.EventRoomCreated, Room: room("a", 10, "v")})
	require.Equal(t, 1, s.Len())

	r.Apply("v", chat.RoomEvent{Kind: chat.EventRoomUpdated, Room: room("a", 20, "z")})
	require.Equal(t, 0, s.Len())
}
