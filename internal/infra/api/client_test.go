package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkup/internal/domain/chat"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", time.Second)
}

func TestListRoomsQueryAndDecode(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat-rooms/u1/rooms", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "15", r.URL.Query().Get("limit"))
		require.Equal(t, "group", r.URL.Query().Get("filter"))
		require.Equal(t, "coffee", r.URL.Query().Get("search"))
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": {
				"data": [
					{"id": "r1", "user_ids": ["u1"], "name": "Coffee crew"},
					{"id": "r2", "user_ids": ["u1", "u2"], "is_personal": true}
				],
				"pagination": {"totalCount": 31, "currentPage": 2, "totalPages": 3}
			}
		}`))
	})

	rooms, pg, err := c.ListRooms(context.Background(), "u1", 2, 15, chat.FilterCriteria{
		Tab:    chat.TabGroup,
		Search: "  coffee ",
	})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "r1", rooms[0].ID)
	require.Equal(t, "Coffee crew", rooms[0].Name)
	require.True(t, rooms[1].IsPersonal)
	require.NotNil(t, pg)
	require.Equal(t, chat.PaginationState{TotalCount: 31, CurrentPage: 2, TotalPages: 3}, *pg)
	require.True(t, pg.HasMore())
}

func TestListRoomsOmitsEmptySearch(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["search"]
		require.False(t, present, "empty search must not be sent")
		w.Write([]byte(`{"data": {"data": [], "pagination": {"totalCount": 0, "currentPage": 1, "totalPages": 0}}}`))
	})

	_, _, err := c.ListRooms(context.Background(), "u1", 1, 15, chat.FilterCriteria{Tab: chat.TabAll})
	require.NoError(t, err)
}

func TestListRoomsMalformedPaginationIsNil(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing block":    `{"data": {"data": [{"id": "r1"}]}}`,
		"zero currentPage": `{"data": {"data": [{"id": "r1"}], "pagination": {"totalCount": 1, "currentPage": 0, "totalPages": 1}}}`,
		"negative total":   `{"data": {"data": [{"id": "r1"}], "pagination": {"totalCount": -1, "currentPage": 1, "totalPages": 1}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			payload := body
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(payload))
			})

			rooms, pg, err := c.ListRooms(context.Background(), "u1", 1, 15, chat.FilterCriteria{Tab: chat.TabAll})
			require.NoError(t, err)
			require.Len(t, rooms, 1)
			require.Nil(t, pg)
		})
	}
}

func TestNon2xxStatusIsAnError(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	_, _, err := c.ListRooms(context.Background(), "u1", 1, 15, chat.FilterCriteria{Tab: chat.TabAll})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestGetRoomDecodesEnvelope(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat-rooms/r9", r.URL.Path)
		w.Write([]byte(`{"success": true, "data": {"id": "r9", "name": "Hiking", "user_ids": ["u1", "u2"]}}`))
	})

	room, err := c.GetRoom(context.Background(), "r9")
	require.NoError(t, err)
	require.Equal(t, "r9", room.ID)
	require.Equal(t, []string{"u1", "u2"}, room.UserIDs)
}

func TestUnreadCountDecodes(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat-rooms/unread-count", r.URL.Path)
		w.Write([]byte(`{"data": {"count": 12}}`))
	})

	count, err := c.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 12, count)
}

func TestJoinRoomSendsMembershipPayload(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/chat-rooms/join", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			ChatRoomID string   `json:"chat_room_id"`
			UserIDs    []string `json:"user_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "r1", payload.ChatRoomID)
		require.Equal(t, []string{"u3"}, payload.UserIDs)
	})

	require.NoError(t, c.JoinRoom(context.Background(), "r1", []string{"u3"}))
}

func TestLeaveRoomHitsMembershipPath(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/chat-rooms/r1/user/u1", r.URL.Path)
	})

	require.NoError(t, c.LeaveRoom(context.Background(), "r1", "u1"))
}

func TestMarkAllReadSendsViewer(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/messages/mark-all-read", r.URL.Path)

		var payload struct {
			UserID string `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "u1", payload.UserID)
	})

	require.NoError(t, c.MarkAllRead(context.Background(), "u1"))
}

func TestMarkRoomRead(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/messages/mark-read/r1", r.URL.Path)
	})

	require.NoError(t, c.MarkRoomRead(context.Background(), "r1"))
}
