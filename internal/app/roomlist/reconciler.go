package roomlist

import (
	"log/slog"

	"linkup/internal/domain/chat"
)

// Reconciler merges externally pushed room:created / room:updated events into
// the store. It is safe under duplicate and out-of-order delivery: a created
// event for a known id degrades to an update, and nothing here ever
// duplicates an entry. A single corrupt event must not break the live stream,
// so malformed payloads are dropped, not propagated.
type Reconciler struct {
	store *Store
	log   *slog.Logger
}

// NewReconciler wires a reconciler onto the shared store.
func NewReconciler(store *Store, log *slog.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// ApplyCreated handles a room:created event for the given viewer.
func (r *Reconciler) ApplyCreated(viewerID string, room chat.RoomRecord) {
	if viewerID == "" {
		return
	}
	if room.ID == "" {
		r.dropMalformed(chat.EventRoomCreated)
		return
	}
	if r.store.Contains(room.ID) {
		// Duplicate delivery: a created event is never grounds for a
		// second entry.
		r.ApplyUpdated(viewerID, room)
		return
	}
	r.store.UpsertFromEvent(room)
}

// ApplyUpdated handles a room:updated event for the given viewer. When the
// update removed the viewer from the membership set, the room is evicted.
// An update for a room that is not in the list does not insert it; insertion
// is reserved for created events.
func (r *Reconciler) ApplyUpdated(viewerID string, room chat.RoomRecord) {
	if viewerID == "" {
		return
	}
	if room.ID == "" {
		r.dropMalformed(chat.EventRoomUpdated)
		return
	}
	if !room.HasMember(viewerID) {
		r.store.RemoveFromEvent(room.ID)
		return
	}
	if !r.store.UpdateFromEvent(room) && r.log != nil {
		r.log.Debug("room update for unseen room ignored", "room_id", room.ID)
	}
}

// Apply dispatches a decoded event to the matching handler.
func (r *Reconciler) Apply(viewerID string, ev chat.RoomEvent) {
	switch ev.Kind {
	case chat.EventRoomCreated:
		r.ApplyCreated(viewerID, ev.Room)
	case chat.EventRoomUpdated:
		r.ApplyUpdated(viewerID, ev.Room)
	default:
		r.dropMalformed(ev.Kind)
	}
}

func (r *Reconciler) dropMalformed(kind string) {
	if r.log != nil {
		r.log.Warn("malformed room event dropped", "kind", kind)
	}
}
