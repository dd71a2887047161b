// Package memory holds in-memory implementations for demo and local runs.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkup/internal/app/roomlist"
	"linkup/internal/domain/chat"
)

// ErrRoomNotFound is returned when a room cannot be located in memory.
var ErrRoomNotFound = errors.New("memory: room not found")

// ChatAPI is an in-memory chat backend for demo purposes. It implements the
// same contract as the HTTP client, including server-side filtering and
// pagination, so the rest of the subsystem cannot tell the two apart.
type ChatAPI struct {
	mu    sync.RWMutex
	rooms map[string]chat.RoomRecord
	now   func() time.Time
}

// NewChatAPI builds an empty in-memory backend.
func NewChatAPI() *ChatAPI {
	return &ChatAPI{
		rooms: make(map[string]chat.RoomRecord),
		now:   time.Now,
	}
}

// Seed loads rooms, keyed by id. Rooms without an id get one assigned.
func (m *ChatAPI) Seed(rooms ...chat.RoomRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range rooms {
		if room.ID == "" {
			room.ID = uuid.NewString()
		}
		m.rooms[room.ID] = cloneRoom(room)
	}
}

// cloneRoom detaches the record's slices from the map value's backing arrays.
// Records leave this package only as clones: returned rooms end up inside the
// caller's store, and a later membership or read-state mutation must not
// reach into them.
func cloneRoom(room chat.RoomRecord) chat.RoomRecord {
	room.UserIDs = append([]string(nil), room.UserIDs...)
	room.Users = append([]chat.RoomUser(nil), room.Users...)
	return room
}

// ListRooms returns one page of the viewer's rooms, filtered and sorted the
// way the real backend does.
func (m *ChatAPI) ListRooms(_ context.Context, viewerID string, page, limit int, filter chat.FilterCriteria) ([]chat.RoomRecord, *chat.PaginationState, error) {
	filter = filter.Normalized()
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 15
	}

	m.mu.RLock()
	matched := make([]chat.RoomRecord, 0, len(m.rooms))
	for _, room := range m.rooms {
		if room.IsDeleted || !room.HasMember(viewerID) {
			continue
		}
		if !matchesTab(room, viewerID, filter.Tab) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(room.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, cloneRoom(room))
	}
	m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SortKey().After(matched[j].SortKey())
	})

	total := len(matched)
	pg := &chat.PaginationState{
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
	}
	start := (page - 1) * limit
	if start >= total {
		return nil, pg, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], pg, nil
}

// UnreadCount sums the viewer's per-room unread counters.
func (m *ChatAPI) UnreadCount(_ context.Context, viewerID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, room := range m.rooms {
		if room.IsDeleted || !room.HasMember(viewerID) {
			continue
		}
		total += roomlist.RoomUnread(room, viewerID)
	}
	return total, nil
}

// GetRoom returns a room or ErrRoomNotFound.
func (m *ChatAPI) GetRoom(_ context.Context, roomID string) (chat.RoomRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return chat.RoomRecord{}, ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

// CreateOrGetRoom returns the existing personal room for the same participant
// pair, or stores a new room.
func (m *ChatAPI) CreateOrGetRoom(_ context.Context, req roomlist.CreateRoomRequest) (chat.RoomRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.IsPersonal {
		for _, room := range m.rooms {
			if room.IsPersonal && !room.IsDeleted && sameMembers(room.UserIDs, req.UserIDs) {
				return cloneRoom(room), nil
			}
		}
	}
	room := chat.RoomRecord{
		ID:           uuid.NewString(),
		UserIDs:      append([]string(nil), req.UserIDs...),
		IsPersonal:   req.IsPersonal,
		Name:         req.Name,
		EventID:      req.EventID,
		EventImage:   req.EventImage,
		ProfileImage: req.ProfileImage,
		CreatedAt:    m.now(),
	}
	for _, id := range req.UserIDs {
		room.Users = append(room.Users, chat.RoomUser{ID: id})
	}
	m.rooms[room.ID] = cloneRoom(room)
	return room, nil
}

// JoinRoom adds users to a room's membership.
func (m *ChatAPI) JoinRoom(_ context.Context, roomID string, userIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	for _, id := range userIDs {
		if room.HasMember(id) {
			continue
		}
		room.UserIDs = append(room.UserIDs, id)
		room.Users = append(room.Users, chat.RoomUser{ID: id})
	}
	m.rooms[roomID] = room
	return nil
}

// LeaveRoom drops a user from a room's membership.
func (m *ChatAPI) LeaveRoom(_ context.Context, roomID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.UserIDs = remove(room.UserIDs, userID)
	users := make([]chat.RoomUser, 0, len(room.Users))
	for _, u := range room.Users {
		if u.ID != userID {
			users = append(users, u)
		}
	}
	room.Users = users
	m.rooms[roomID] = room
	return nil
}

// UpdateRoom applies a metadata patch.
func (m *ChatAPI) UpdateRoom(_ context.Context, roomID string, patch roomlist.RoomPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if patch.Name != nil {
		room.Name = *patch.Name
	}
	if patch.ProfileImage != nil {
		room.ProfileImage = *patch.ProfileImage
	}
	m.rooms[roomID] = room
	return nil
}

// MarkRoomRead zeroes every participant's unread counter in one room.
func (m *ChatAPI) MarkRoomRead(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	users := make([]chat.RoomUser, len(room.Users))
	copy(users, room.Users)
	for i := range users {
		users[i].UnreadMessageCount = 0
	}
	room.Users = users
	m.rooms[roomID] = room
	return nil
}

// MarkAllRead zeroes the viewer's unread counter across all rooms.
func (m *ChatAPI) MarkAllRead(_ context.Context, viewerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, room := range m.rooms {
		if !room.HasMember(viewerID) {
			continue
		}
		users := make([]chat.RoomUser, len(room.Users))
		copy(users, room.Users)
		for i := range users {
			if users[i].ID == viewerID {
				users[i].UnreadMessageCount = 0
			}
		}
		room.Users = users
		m.rooms[id] = room
	}
	return nil
}

func matchesTab(room chat.RoomRecord, viewerID string, tab chat.Tab) bool {
	switch tab {
	case chat.TabUnread:
		return roomlist.RoomUnread(room, viewerID) > 0
	case chat.TabGroup:
		return !room.IsPersonal && !room.IsBroadcast
	case chat.TabEvent:
		return room.EventID != ""
	case chat.TabNetwork:
		return room.IsBroadcast
	default:
		return true
	}
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func remove(ids []string, target string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
