package roomlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkup/internal/domain/chat"
)

var storeEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func room(id string, minutes int, members ...string) chat.RoomRecord {
	ts := storeEpoch.Add(time.Duration(minutes) * time.Minute)
	return chat.RoomRecord{
		ID:              id,
		UserIDs:         members,
		LastMessageTime: &ts,
		CreatedAt:       storeEpoch.Add(-time.Hour),
	}
}

func ids(rooms []chat.RoomRecord) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.ID
	}
	return out
}

func requireSorted(t *testing.T, rooms []chat.RoomRecord) {
	t.Helper()
	for i := 1; i < len(rooms); i++ {
		if rooms[i-1].SortKey().Before(rooms[i].SortKey()) {
			t.Fatalf("sort invariant violated at %d: %v < %v", i, rooms[i-1].SortKey(), rooms[i].SortKey())
		}
	}
}

func TestReplaceSortsAndDropsDeleted(t *testing.T) {
	t.Parallel()

	s := NewStore()
	deleted := room("gone", 99, "v")
	deleted.IsDeleted = true
	s.ReplaceFromFetch([]chat.RoomRecord{
		room("b", 5, "v"),
		room("a", 10, "v"),
		deleted,
		room("b", 7, "v"), // duplicate id inside one page
	}, chat.PaginationState{CurrentPage: 1, TotalPages: 1, TotalCount: 2}, 0)

	rooms := s.Rooms()
	require.Equal(t, []string{"a", "b"}, ids(rooms))
	requireSorted(t, rooms)
	require.Equal(t, 1, s.Pagination().CurrentPage)
}

func TestAppendSkipsExistingIDs(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.ReplaceFromFetch([]chat.RoomRecord{room("a", 10, "v"), room("b", 5, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 2, TotalCount: 3}, 0)

	// The next page carries "b" again because a socket insert shifted
	// server-side pagination.
	s.AppendFromFetch([]chat.RoomRecord{room("b", 5, "v"), room("c", 1, "v")},
		chat.PaginationState{CurrentPage: 2, TotalPages: 2, TotalCount: 3})

	rooms := s.Rooms()
	require.Equal(t, []string{"a", "b", "c"}, ids(rooms))
	requireSorted(t, rooms)
	require.False(t, s.Pagination().HasMore())
}

func TestUpsertFromEventNeverDuplicates(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.UpsertFromEvent(room("a", 10, "v"))
	s.UpsertFromEvent(room("a", 20, "v"))
	require.Equal(t, 1, s.Len())
	require.Equal(t, storeEpoch.Add(20*time.Minute), s.Rooms()[0].SortKey())
}

func TestUpdateFromEventOnlyWhenPresent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.False(t, s.UpdateFromEvent(room("ghost", 1, "v")))
	require.Equal(t, 0, s.Len())

	s.UpsertFromEvent(room("a", 10, "v"))
	require.True(t, s.UpdateFromEvent(room("a", 30, "v")))
	require.Equal(t, storeEpoch.Add(30*time.Minute), s.Rooms()[0].SortKey())
}

func TestReplaceKeepsReconciledWritesAfterFetchWasIssued(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.ReplaceFromFetch([]chat.RoomRecord{room("a", 10, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 1, TotalCount: 1}, 0)

	// A reset fetch goes out now...
	since := s.Version()
	// ...and while it is in flight the event path bumps room "a".
	s.UpsertFromEvent(room("a", 30, "v"))

	// The fetch resolves with a snapshot that predates the socket update.
	s.ReplaceFromFetch([]chat.RoomRecord{room("b", 20, "v"), room("a", 10, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 1, TotalCount: 2}, since)

	rooms := s.Rooms()
	require.Equal(t, []string{"a", "b"}, ids(rooms))
	require.Equal(t, storeEpoch.Add(30*time.Minute), rooms[0].SortKey(), "reconciled copy must win")
	requireSorted(t, rooms)
}

func TestReplaceDoesNotResurrectEvictedRooms(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.ReplaceFromFetch([]chat.RoomRecord{room("a", 10, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 1, TotalCount: 1}, 0)

	since := s.Version()
	s.RemoveFromEvent("a")

	s.ReplaceFromFetch([]chat.RoomRecord{room("a", 10, "v"), room("b", 5, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 1, TotalCount: 2}, since)

	require.Equal(t, []string{"b"}, ids(s.Rooms()))
}

func TestReplaceKeepsEventInsertsMissingFromPage(t *testing.T) {
	t.Parallel()

	s := NewStore()
	since := s.Version()
	s.UpsertFromEvent(room("new", 40, "v"))

	s.ReplaceFromFetch([]chat.RoomRecord{room("b", 20, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 1, TotalCount: 1}, since)

	require.Equal(t, []string{"new", "b"}, ids(s.Rooms()))
}

func TestClearEmptiesEverything(t *testing.T) {
	t.Parallel()

	s := NewStore()
	s.ReplaceFromFetch([]chat.RoomRecord{room("a", 10, "v")},
		chat.PaginationState{CurrentPage: 1, TotalPages: 2, TotalCount: 20}, 0)
	s.Clear()

	require.Equal(t, 0, s.Len())
	require.Equal(t, chat.PaginationState{}, s.Pagination())
}

func TestSubscribeFiresOnEveryMutation(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var fired int
	s.Subscribe(func() { fired++ })

	s.ReplaceFromFetch(nil, chat.PaginationState{CurrentPage: 1}, 0)
	s.UpsertFromEvent(room("a", 1, "v"))
	s.RemoveFromEvent("a")
	s.Clear()

	require.Equal(t, 4, fired)
}
