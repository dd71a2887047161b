// Package inbox records already-applied event envelope ids. The reconciler is
// idempotent on its own; the inbox is an optional short-circuit for
// deployments where the broker redelivers aggressively.
package inbox

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"linkup/internal/domain/chat"
)

// Store persists seen envelope ids, unique per consumer name.
type Store struct {
	col      *mongo.Collection
	consumer string
}

// NewStore binds the inbox collection for the given consumer.
func NewStore(db *mongo.Database, consumer string) *Store {
	col := db.Collection("room_event_inbox")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Store{col: col, consumer: consumer}
}

// Seen records eventID and reports whether it was already present. The
// insert-and-check shape makes first delivery win under concurrent consumers.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

// EventHandler matches the event source sink shape.
type EventHandler interface {
	HandleRoomEvent(ev chat.RoomEvent)
}

// DedupHandler drops envelopes the inbox has already seen before they reach
// the reconciler. Envelopes without an id, and inbox failures, pass through:
// the reconciler tolerates duplicates, losing an event it would not.
type DedupHandler struct {
	Next  EventHandler
	Inbox *Store
	Log   *slog.Logger
}

// HandleRoomEvent implements EventHandler.
func (d DedupHandler) HandleRoomEvent(ev chat.RoomEvent) {
	if d.Inbox != nil && ev.ID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		seen, err := d.Inbox.Seen(ctx, ev.ID)
		cancel()
		if err == nil && seen {
			if d.Log != nil {
				d.Log.Debug("duplicate room event dropped", "event_id", ev.ID)
			}
			return
		}
		if err != nil && d.Log != nil {
			d.Log.Warn("event inbox unavailable, passing event through", "error", err)
		}
	}
	d.Next.HandleRoomEvent(ev)
}
