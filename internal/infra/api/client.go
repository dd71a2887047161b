// Package api implements the upstream chat REST collaborator consumed by the
// room-list subsystem. It owns no wire format of its own: the JSON contract
// below is whatever the chat service defines.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"linkup/internal/app/roomlist"
	"linkup/internal/domain/chat"
)

// Client talks to the chat service over HTTP/JSON.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for baseURL. token, when set, is sent as a bearer
// Authorization header. timeout bounds each request on top of any caller
// context deadline.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type roomsEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Data       []chat.RoomRecord     `json:"data"`
		Pagination *chat.PaginationState `json:"pagination"`
	} `json:"data"`
}

type roomEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    chat.RoomRecord `json:"data"`
}

type countEnvelope struct {
	Data struct {
		Count int `json:"count"`
	} `json:"data"`
}

// ListRooms fetches one page of the viewer's room list. A missing or
// malformed pagination block is reported as nil; the caller substitutes its
// safe default.
func (c *Client) ListRooms(ctx context.Context, viewerID string, page, limit int, filter chat.FilterCriteria) ([]chat.RoomRecord, *chat.PaginationState, error) {
	filter = filter.Normalized()
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("filter", string(filter.Tab))
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}

	var env roomsEnvelope
	path := fmt.Sprintf("/chat-rooms/%s/rooms?%s", url.PathEscape(viewerID), q.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, nil, err
	}
	pg := env.Data.Pagination
	if pg != nil && (pg.CurrentPage <= 0 || pg.TotalPages < 0 || pg.TotalCount < 0) {
		pg = nil
	}
	return env.Data.Data, pg, nil
}

// GetRoom fetches a single room by id.
func (c *Client) GetRoom(ctx context.Context, roomID string) (chat.RoomRecord, error) {
	var env roomEnvelope
	if err := c.do(ctx, http.MethodGet, "/chat-rooms/"+url.PathEscape(roomID), nil, &env); err != nil {
		return chat.RoomRecord{}, err
	}
	return env.Data, nil
}

// UnreadCount fetches the viewer's global unread counter from the dedicated
// summary endpoint.
func (c *Client) UnreadCount(ctx context.Context, viewerID string) (int, error) {
	var env countEnvelope
	if err := c.do(ctx, http.MethodGet, "/chat-rooms/unread-count", nil, &env); err != nil {
		return 0, err
	}
	return env.Data.Count, nil
}

// CreateOrGetRoom creates a room or returns the existing one for the same
// participant set.
func (c *Client) CreateOrGetRoom(ctx context.Context, req roomlist.CreateRoomRequest) (chat.RoomRecord, error) {
	var env roomEnvelope
	if err := c.do(ctx, http.MethodPost, "/chat-rooms/", req, &env); err != nil {
		return chat.RoomRecord{}, err
	}
	return env.Data, nil
}

// JoinRoom adds users to an existing room.
func (c *Client) JoinRoom(ctx context.Context, roomID string, userIDs []string) error {
	payload := struct {
		ChatRoomID string   `json:"chat_room_id"`
		UserIDs    []string `json:"user_ids"`
	}{ChatRoomID: roomID, UserIDs: userIDs}
	return c.do(ctx, http.MethodPut, "/chat-rooms/join", payload, nil)
}

// LeaveRoom removes a user from a room.
func (c *Client) LeaveRoom(ctx context.Context, roomID, userID string) error {
	path := "/chat-rooms/" + url.PathEscape(roomID) + "/user/" + url.PathEscape(userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UpdateRoom patches room metadata.
func (c *Client) UpdateRoom(ctx context.Context, roomID string, patch roomlist.RoomPatch) error {
	return c.do(ctx, http.MethodPut, "/chat-rooms/"+url.PathEscape(roomID), patch, nil)
}

// MarkRoomRead clears the caller's unread state for one room.
func (c *Client) MarkRoomRead(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodPut, "/messages/mark-read/"+url.PathEscape(roomID), struct{}{}, nil)
}

// MarkAllRead clears viewerID's unread state across all rooms.
func (c *Client) MarkAllRead(ctx context.Context, viewerID string) error {
	payload := struct {
		UserID string `json:"user_id"`
	}{UserID: viewerID}
	return c.do(ctx, http.MethodPut, "/messages/mark-all-read", payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("chat api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("chat api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chat api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body drained for connection reuse; payload content is not trusted
		// enough to surface.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chat api: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("chat api: decode %s %s: %w", method, path, err)
	}
	return nil
}
