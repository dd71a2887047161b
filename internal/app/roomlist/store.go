package roomlist

import (
	"sort"
	"sync"

	"linkup/internal/domain/chat"
)

// Store owns the in-memory room list. It is the single piece of mutable
// shared state in the subsystem: REST pagination (Fetcher) and real-time
// reconciliation (Reconciler) both write it, everything else reads it.
// Single-writer discipline is enforced at the store boundary — each mutation
// runs to completion, including the re-sort, under one lock.
//
// The store stamps every mutation with a monotonic version and remembers, per
// room id, the version at which the event path last wrote or evicted it. A
// reset fetch captures the version at issue time and merges against these
// stamps on application, so a reconciled update that logically happened after
// the fetch was issued survives the replace.
type Store struct {
	mu         sync.RWMutex
	rooms      []chat.RoomRecord
	pagination chat.PaginationState
	version    uint64

	// reconciled/evicted: room id -> store version of the last event-path
	// upsert/removal. Pruned when a reset fetch proves them stale.
	reconciled map[string]uint64
	evicted    map[string]uint64

	obsMu     sync.Mutex
	observers []func()
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		reconciled: make(map[string]uint64),
		evicted:    make(map[string]uint64),
	}
}

// Subscribe registers fn to run after every store mutation. Registration is
// done once at wiring time; there is no unsubscribe.
func (s *Store) Subscribe(fn func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Store) notify() {
	s.obsMu.Lock()
	observers := make([]func(), len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Rooms returns a copy of the visible room list, already filtered, sorted and
// deduplicated.
func (s *Store) Rooms() []chat.RoomRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]chat.RoomRecord, len(s.rooms))
	copy(out, s.rooms)
	return out
}

// Pagination returns the current pagination bookkeeping.
func (s *Store) Pagination() chat.PaginationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Version returns the current mutation counter. Fetchers capture it before
// issuing a reset request.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Contains reports whether a room id is currently in the list.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// Len returns the number of visible rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// ReplaceFromFetch applies a reset (page 1) result. sinceVersion is the store
// version captured when the request was issued: any room the event path wrote
// after that version keeps its reconciled copy, and any room evicted after it
// is not resurrected by the incoming page.
func (s *Store) ReplaceFromFetch(rooms []chat.RoomRecord, pg chat.PaginationState, sinceVersion uint64) {
	s.mu.Lock()

	next := make([]chat.RoomRecord, 0, len(rooms))
	seen := make(map[string]bool, len(rooms))
	for _, room := range rooms {
		if room.ID == "" || room.IsDeleted || seen[room.ID] {
			continue
		}
		if s.evicted[room.ID] > sinceVersion {
			continue
		}
		if s.reconciled[room.ID] > sinceVersion {
			if i := s.indexOf(room.ID); i >= 0 {
				room = s.rooms[i]
			}
		}
		next = append(next, room)
		seen[room.ID] = true
	}
	// Rooms the event path inserted or updated while the fetch was in
	// flight stay visible even when the incoming page does not carry them.
	for _, room := range s.rooms {
		if !seen[room.ID] && s.reconciled[room.ID] > sinceVersion {
			next = append(next, room)
			seen[room.ID] = true
		}
	}

	s.rooms = next
	s.pagination = pg
	s.sortLocked()
	s.pruneStamps(sinceVersion)
	s.version++
	s.mu.Unlock()
	s.notify()
}

// AppendFromFetch extends the list with a page-N result, skipping any room
// whose id is already present so concurrent socket inserts never duplicate.
func (s *Store) AppendFromFetch(rooms []chat.RoomRecord, pg chat.PaginationState) {
	s.mu.Lock()
	for _, room := range rooms {
		if room.ID == "" || room.IsDeleted {
			continue
		}
		if s.indexOf(room.ID) >= 0 {
			continue
		}
		s.rooms = append(s.rooms, room)
	}
	s.pagination = pg
	s.sortLocked()
	s.version++
	s.mu.Unlock()
	s.notify()
}

// UpsertFromEvent inserts or replaces a room on behalf of the reconciler and
// stamps it, so an in-flight reset fetch cannot clobber the write.
func (s *Store) UpsertFromEvent(room chat.RoomRecord) {
	if room.ID == "" {
		return
	}
	s.mu.Lock()
	s.version++
	if room.IsDeleted {
		s.removeLocked(room.ID)
		s.evicted[room.ID] = s.version
	} else {
		if i := s.indexOf(room.ID); i >= 0 {
			s.rooms[i] = room
		} else {
			s.rooms = append([]chat.RoomRecord{room}, s.rooms...)
		}
		s.reconciled[room.ID] = s.version
		delete(s.evicted, room.ID)
	}
	s.sortLocked()
	s.mu.Unlock()
	s.notify()
}

// UpdateFromEvent replaces a room only when it is already present. It returns
// false otherwise — an update for an unseen room is informational only.
func (s *Store) UpdateFromEvent(room chat.RoomRecord) bool {
	if room.ID == "" {
		return false
	}
	s.mu.Lock()
	i := s.indexOf(room.ID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.version++
	if room.IsDeleted {
		s.removeLocked(room.ID)
		s.evicted[room.ID] = s.version
	} else {
		s.rooms[i] = room
		s.reconciled[room.ID] = s.version
	}
	s.sortLocked()
	s.mu.Unlock()
	s.notify()
	return true
}

// RemoveFromEvent evicts a room the viewer can no longer see and stamps the
// eviction so a concurrent fetch does not bring it back.
func (s *Store) RemoveFromEvent(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.version++
	s.removeLocked(id)
	s.evicted[id] = s.version
	delete(s.reconciled, id)
	s.mu.Unlock()
	s.notify()
}

// Clear drops the whole list, e.g. on logout or a failed reset fetch.
func (s *Store) Clear() {
	s.mu.Lock()
	s.rooms = nil
	s.pagination = chat.PaginationState{}
	s.reconciled = make(map[string]uint64)
	s.evicted = make(map[string]uint64)
	s.version++
	s.mu.Unlock()
	s.notify()
}

func (s *Store) indexOf(id string) int {
	for i, room := range s.rooms {
		if room.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
	}
}

// sortLocked re-applies the sort invariant: descending by
// lastMessageTime ?? createdAt. Stable so equal timestamps keep their
// relative order.
func (s *Store) sortLocked() {
	sort.SliceStable(s.rooms, func(i, j int) bool {
		return s.rooms[i].SortKey().After(s.rooms[j].SortKey())
	})
}

// pruneStamps drops bookkeeping entries a completed reset fetch has already
// merged against.
func (s *Store) pruneStamps(upTo uint64) {
	for id, v := range s.reconciled {
		if v <= upTo {
			delete(s.reconciled, id)
		}
	}
	for id, v := range s.evicted {
		if v <= upTo {
			delete(s.evicted, id)
		}
	}
}
