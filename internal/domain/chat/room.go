package chat

import "time"

// RoomUser is the participant summary carried inside a room payload. The
// unread counter is per user, per room.
type RoomUser struct {
	ID                 string `json:"id"`
	Name               string `json:"name,omitempty"`
	Username           string `json:"username,omitempty"`
	ImageURL           string `json:"image_url,omitempty"`
	ThumbnailURL       string `json:"thumbnail_url,omitempty"`
	UnreadMessageCount int    `json:"unreadMessageCount"`
}

// RoomRecord is the canonical shape of a conversation thread as delivered by
// the upstream chat API. Field names follow the upstream JSON contract, which
// mixes snake_case with a couple of legacy camelCase keys.
type RoomRecord struct {
	ID           string     `json:"id"`
	UserIDs      []string   `json:"user_ids"`
	IsPersonal   bool       `json:"is_personal"`
	IsBroadcast  bool       `json:"is_broadcast"`
	Name         string     `json:"name,omitempty"`
	EventID      string     `json:"event_id,omitempty"`
	EventImage   string     `json:"event_image,omitempty"`
	ProfileImage string     `json:"profile_image,omitempty"`
	Users        []RoomUser `json:"users,omitempty"`
	LastMessage  string     `json:"lastMessage,omitempty"`

	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	IsDeleted       bool       `json:"is_deleted"`
}

// SortKey returns the timestamp the room list orders by: the most recent
// message when one exists, the creation time otherwise.
func (r RoomRecord) SortKey() time.Time {
	if r.LastMessageTime != nil && !r.LastMessageTime.IsZero() {
		return *r.LastMessageTime
	}
	return r.CreatedAt
}

// HasMember reports whether userID is part of the room's authoritative
// membership set.
func (r RoomRecord) HasMember(userID string) bool {
	for _, id := range r.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
