package roomlist

import (
	"context"
	"log/slog"
	"sync"

	"linkup/internal/domain/chat"
)

// UnreadCounter is the dedicated summary endpoint for the global unread
// counter. The global count comes from the server, not from summing rooms —
// the room list may be partially paginated.
type UnreadCounter interface {
	UnreadCount(ctx context.Context, viewerID string) (int, error)
}

// RoomUnread returns the viewer's unread count inside a single room, or 0
// when the viewer is not among the loaded participants.
func RoomUnread(room chat.RoomRecord, viewerID string) int {
	if viewerID == "" {
		return 0
	}
	for _, u := range room.Users {
		if u.ID == viewerID {
			return u.UnreadMessageCount
		}
	}
	return 0
}

// UnreadAggregator keeps the cached global unread counter fresh. It refreshes
// on viewer change and on demand after read-state actions; on logout it
// resets to zero.
type UnreadAggregator struct {
	mu    sync.RWMutex
	count int

	api UnreadCounter
	log *slog.Logger
}

// NewUnreadAggregator builds an aggregator over the summary endpoint.
func NewUnreadAggregator(api UnreadCounter, log *slog.Logger) *UnreadAggregator {
	return &UnreadAggregator{api: api, log: log}
}

// Count returns the cached global unread counter.
func (a *UnreadAggregator) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.count
}

// Refresh fetches the counter from the summary endpoint. A transport failure
// keeps the previous cached value; an unread badge going momentarily stale
// beats flapping to zero.
func (a *UnreadAggregator) Refresh(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		a.Reset()
		return ErrNotAuthenticated
	}
	count, err := a.api.UnreadCount(ctx, viewerID)
	if err != nil {
		if a.log != nil {
			a.log.Warn("unread count refresh failed", "error", err)
		}
		return &TransportError{Op: "fetch unread count", Err: err}
	}
	if count < 0 {
		count = 0
	}
	a.mu.Lock()
	a.count = count
	a.mu.Unlock()
	return nil
}

// Reset zeroes the counter, e.g. when the viewer logs out.
func (a *UnreadAggregator) Reset() {
	a.mu.Lock()
	a.count = 0
	a.mu.Unlock()
}
