package chat

import (
	"testing"
	"time"
)

func TestSortKeyPrefersLastMessageTime(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	last := created.Add(2 * time.Hour)

	room := RoomRecord{ID: "r1", CreatedAt: created, LastMessageTime: &last}
	if got := room.SortKey(); !got.Equal(last) {
		t.Fatalf("SortKey=%v want %v", got, last)
	}

	room.LastMessageTime = nil
	if got := room.SortKey(); !got.Equal(created) {
		t.Fatalf("SortKey=%v want created %v", got, created)
	}

	zero := time.Time{}
	room.LastMessageTime = &zero
	if got := room.SortKey(); !got.Equal(created) {
		t.Fatalf("SortKey with zero lastMessageTime=%v want created %v", got, created)
	}
}

func TestHasMember(t *testing.T) {
	t.Parallel()

	room := RoomRecord{ID: "r1", UserIDs: []string{"a", "b"}}
	if !room.HasMember("a") {
		t.Fatal("expected a to be a member")
	}
	if room.HasMember("z") {
		t.Fatal("z must not be a member")
	}
	if (RoomRecord{}).HasMember("a") {
		t.Fatal("empty membership must match nobody")
	}
}
