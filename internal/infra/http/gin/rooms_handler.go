package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"linkup/internal/app/roomlist"
	"linkup/internal/domain/chat"
)

// RoomsHandler bridges HTTP with the room-list service.
type RoomsHandler struct {
	Service *roomlist.Service
	Logger  *slog.Logger
}

// List returns the synced list plus pagination and loading state.
func (h RoomsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":       h.Service.Rooms(),
		"pagination": h.Service.Pagination(),
		"loading":    h.Service.Loading(),
	})
}

// NextPage triggers an infinite-scroll append. A transport failure is
// deliberately soft: existing data stays, the client just stops its spinner.
func (h RoomsHandler) NextPage(c *gin.Context) {
	fetched, err := h.Service.LoadNextPage(c.Request.Context())
	switch {
	case errors.Is(err, roomlist.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no viewer"})
		return
	case errors.Is(err, roomlist.ErrStaleResponse):
		// Superseded by a newer reload; nothing to report.
	case err != nil:
		if h.Logger != nil {
			h.Logger.Warn("next page failed", "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"fetched":    fetched,
		"data":       h.Service.Rooms(),
		"pagination": h.Service.Pagination(),
	})
}

// Refresh is pull-to-refresh: reset fetch under the current filter.
func (h RoomsHandler) Refresh(c *gin.Context) {
	if err := h.Service.Refresh(c.Request.Context()); err != nil {
		h.renderError(c, "refresh failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       h.Service.Rooms(),
		"pagination": h.Service.Pagination(),
	})
}

type searchRequest struct {
	Search string `json:"search"`
}

// SetSearch feeds a search intent into the debouncer and returns immediately;
// the reload happens asynchronously when the input settles.
func (h RoomsHandler) SetSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.Service.SetSearch(req.Search)
	c.Status(http.StatusAccepted)
}

type tabRequest struct {
	Tab string `json:"tab"`
}

// SetTab switches the active tab; the reload fires without debounce.
func (h RoomsHandler) SetTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.Service.SetTab(chat.ParseTab(req.Tab))
	c.Status(http.StatusAccepted)
}

// UnreadCount returns the cached global unread counter.
func (h RoomsHandler) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": h.Service.UnreadCount()})
}

// Create proxies create-or-get and reconciles the confirmed room.
func (h RoomsHandler) Create(c *gin.Context) {
	var req roomlist.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.UserIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_ids are required"})
		return
	}
	room, err := h.Service.CreateOrGetRoom(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, "create room failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": room})
}

type joinRequest struct {
	ChatRoomID string   `json:"chat_room_id"`
	UserIDs    []string `json:"user_ids"`
}

// Join adds members to a room.
func (h RoomsHandler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatRoomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_room_id is required"})
		return
	}
	if err := h.Service.JoinRoom(c.Request.Context(), req.ChatRoomID, req.UserIDs); err != nil {
		h.renderError(c, "join room failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leave removes the viewer from a room; the room disappears from the list.
func (h RoomsHandler) Leave(c *gin.Context) {
	if err := h.Service.LeaveRoom(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, "leave room failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Update patches room metadata (rename, mute, images).
func (h RoomsHandler) Update(c *gin.Context) {
	var patch roomlist.RoomPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.Service.UpdateRoom(c.Request.Context(), c.Param("id"), patch); err != nil {
		h.renderError(c, "update room failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkRead clears unread state for one room.
func (h RoomsHandler) MarkRead(c *gin.Context) {
	if err := h.Service.MarkRoomRead(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, "mark read failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": h.Service.UnreadCount()})
}

// MarkAllRead clears unread state everywhere.
func (h RoomsHandler) MarkAllRead(c *gin.Context) {
	if err := h.Service.MarkAllRead(c.Request.Context()); err != nil {
		h.renderError(c, "mark all read failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": h.Service.UnreadCount()})
}

func (h RoomsHandler) renderError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, roomlist.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no viewer"})
	case errors.Is(err, roomlist.ErrStaleResponse):
		c.Status(http.StatusNoContent)
	case roomlist.IsTransport(err):
		if h.Logger != nil {
			h.Logger.Warn(msg, "error", err)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream chat service unavailable"})
	default:
		if h.Logger != nil {
			h.Logger.Error(msg, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
