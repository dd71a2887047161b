package roomlist

import (
	"context"

	"linkup/internal/domain/chat"
)

// CreateRoomRequest is the payload for the create-or-get room call.
type CreateRoomRequest struct {
	UserIDs      []string `json:"user_ids"`
	Name         string   `json:"name,omitempty"`
	IsPersonal   bool     `json:"is_personal"`
	EventID      string   `json:"event_id,omitempty"`
	EventImage   string   `json:"event_image,omitempty"`
	ProfileImage string   `json:"profile_image,omitempty"`
}

// RoomPatch carries a partial metadata update. Nil fields are untouched.
type RoomPatch struct {
	Name         *string `json:"name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
	Muted        *bool   `json:"is_muted,omitempty"`
}

// API is the upstream chat collaborator this subsystem consumes. Transport,
// retries and authentication live behind it; every failure surfaces here as a
// plain error and is wrapped into TransportError at the component boundary.
type API interface {
	RoomLister
	UnreadCounter

	GetRoom(ctx context.Context, roomID string) (chat.RoomRecord, error)
	CreateOrGetRoom(ctx context.Context, req CreateRoomRequest) (chat.RoomRecord, error)
	JoinRoom(ctx context.Context, roomID string, userIDs []string) error
	LeaveRoom(ctx context.Context, roomID, userID string) error
	UpdateRoom(ctx context.Context, roomID string, patch RoomPatch) error
	MarkRoomRead(ctx context.Context, roomID string) error
	MarkAllRead(ctx context.Context, viewerID string) error
}
