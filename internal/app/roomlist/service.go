package roomlist

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"linkup/internal/domain/chat"
)

// Config tunes a Service.
type Config struct {
	// PageLimit is the page size for room-list fetches.
	PageLimit int
	// SearchWindow is the search debounce idle window.
	SearchWindow time.Duration
}

// Service is the facade the UI layer talks to. It owns the store and wires
// the fetcher, reconciler, debouncer and unread aggregator around it.
//
// Scheduling model: callers may invoke methods from any goroutine; store
// mutations are serialized inside the store, and the reload path uses a
// generation counter plus context cancellation so that a superseded fetch
// never writes (last-intent-wins).
type Service struct {
	api        API
	store      *Store
	fetcher    *Fetcher
	reconciler *Reconciler
	unread     *UnreadAggregator
	debouncer  *Debouncer
	log        *slog.Logger

	loading atomic.Bool

	mu       sync.Mutex
	viewerID string
	filter   chat.FilterCriteria
	gen      uint64
	cancel   context.CancelFunc
}

// NewService assembles the room-list subsystem around an upstream API client.
func NewService(api API, cfg Config, log *slog.Logger) *Service {
	s := &Service{
		api:    api,
		store:  NewStore(),
		log:    log,
		filter: chat.FilterCriteria{Tab: chat.TabAll},
	}
	s.fetcher = NewFetcher(api, s.store, cfg.PageLimit, log)
	s.reconciler = NewReconciler(s.store, log)
	s.unread = NewUnreadAggregator(api, log)

	opts := []DebouncerOption{WithAuthCheck(func() bool { return s.Viewer() != "" })}
	if cfg.SearchWindow > 0 {
		opts = append(opts, WithWindow(cfg.SearchWindow))
	}
	s.debouncer = NewDebouncer(s.reload, opts...)
	return s
}

// Store exposes the shared store for observers (snapshots, derived state).
func (s *Service) Store() *Store { return s.store }

// Rooms returns the visible room list, filtered, sorted and deduplicated.
func (s *Service) Rooms() []chat.RoomRecord { return s.store.Rooms() }

// Pagination returns the current pagination state.
func (s *Service) Pagination() chat.PaginationState { return s.store.Pagination() }

// UnreadCount returns the cached global unread counter.
func (s *Service) UnreadCount() int { return s.unread.Count() }

// RoomUnread returns the viewer's unread count for one listed room.
func (s *Service) RoomUnread(roomID string) int {
	viewer := s.Viewer()
	for _, room := range s.store.Rooms() {
		if room.ID == roomID {
			return RoomUnread(room, viewer)
		}
	}
	return 0
}

// Loading reports whether a fetch is in flight.
func (s *Service) Loading() bool { return s.loading.Load() }

// Viewer returns the current viewer id, empty when logged out.
func (s *Service) Viewer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewerID
}

// Filter returns the active (tab, search) pair.
func (s *Service) Filter() chat.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetViewer switches the viewer identity. A changed identity drops the old
// viewer's list and refreshes the global unread counter; an empty id is a
// logout.
func (s *Service) SetViewer(ctx context.Context, viewerID string) {
	if viewerID == "" {
		s.Logout()
		return
	}
	s.mu.Lock()
	changed := s.viewerID != viewerID
	s.viewerID = viewerID
	s.mu.Unlock()
	if !changed {
		return
	}
	s.debouncer.Disarm()
	s.store.Clear()
	if err := s.unread.Refresh(ctx, viewerID); err != nil && s.log != nil {
		s.log.Warn("unread refresh on login failed", "error", err)
	}
}

// Logout clears the viewer, cancels any in-flight fetch and empties all
// derived state. It never errors: operations without a viewer are no-ops.
func (s *Service) Logout() {
	s.mu.Lock()
	s.viewerID = ""
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.debouncer.Disarm()
	s.store.Clear()
	s.unread.Reset()
}

// LoadFirstPage performs a reset fetch under filter and arms the debouncer on
// success. A response superseded by a newer reload returns ErrStaleResponse
// and leaves the store to the winner.
func (s *Service) LoadFirstPage(ctx context.Context, filter chat.FilterCriteria) error {
	viewer := s.Viewer()
	if viewer == "" {
		s.store.Clear()
		return ErrNotAuthenticated
	}
	filter = filter.Normalized()

	cctx, gen := s.beginReload(ctx, filter)
	s.loading.Store(true)
	defer s.loading.Store(false)

	err := s.fetcher.FirstPage(cctx, viewer, filter, s.stillCurrent(gen))
	if err != nil {
		return err
	}
	s.debouncer.Sync(filter)
	s.debouncer.Arm()
	return nil
}

// LoadNextPage appends the next page under the active filter. When
// pagination reports no more pages it performs no fetch and returns false.
func (s *Service) LoadNextPage(ctx context.Context) (bool, error) {
	viewer := s.Viewer()
	if viewer == "" {
		return false, ErrNotAuthenticated
	}
	s.mu.Lock()
	filter := s.filter
	gen := s.gen
	s.mu.Unlock()

	s.loading.Store(true)
	defer s.loading.Store(false)
	return s.fetcher.NextPage(ctx, viewer, filter, s.stillCurrent(gen))
}

// Refresh is pull-to-refresh: a reset fetch under the current filter.
func (s *Service) Refresh(ctx context.Context) error {
	return s.LoadFirstPage(ctx, s.Filter())
}

// SetSearch feeds a search keystroke into the debouncer.
func (s *Service) SetSearch(text string) { s.debouncer.SetSearch(text) }

// SetTab feeds a tab selection into the debouncer; tab changes reload
// immediately.
func (s *Service) SetTab(tab chat.Tab) { s.debouncer.SetTab(tab) }

// HandleRoomEvent feeds a decoded real-time event into the reconciler. Safe
// under duplicate and out-of-order delivery; a no-viewer state drops events.
func (s *Service) HandleRoomEvent(ev chat.RoomEvent) {
	viewer := s.Viewer()
	if viewer == "" {
		return
	}
	s.reconciler.Apply(viewer, ev)
}

// CreateOrGetRoom creates (or returns) a room upstream and reconciles the
// confirmed record into the list.
func (s *Service) CreateOrGetRoom(ctx context.Context, req CreateRoomRequest) (chat.RoomRecord, error) {
	viewer := s.Viewer()
	if viewer == "" {
		return chat.RoomRecord{}, ErrNotAuthenticated
	}
	room, err := s.api.CreateOrGetRoom(ctx, req)
	if err != nil {
		return chat.RoomRecord{}, &TransportError{Op: "create room", Err: err}
	}
	s.reconciler.ApplyCreated(viewer, room)
	return room, nil
}

// JoinRoom adds members upstream, then reconciles the confirmed state.
func (s *Service) JoinRoom(ctx context.Context, roomID string, userIDs []string) error {
	viewer := s.Viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if err := s.api.JoinRoom(ctx, roomID, userIDs); err != nil {
		return &TransportError{Op: "join room", Err: err}
	}
	s.refreshRoom(ctx, viewer, roomID, true)
	return nil
}

// LeaveRoom removes the viewer upstream. The confirmed record no longer
// carries the viewer, so reconciliation evicts the room; when the detail
// fetch fails (the server may already refuse it) the room is removed
// directly.
func (s *Service) LeaveRoom(ctx context.Context, roomID string) error {
	viewer := s.Viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if err := s.api.LeaveRoom(ctx, roomID, viewer); err != nil {
		return &TransportError{Op: "leave room", Err: err}
	}
	room, err := s.api.GetRoom(ctx, roomID)
	if err != nil {
		s.store.RemoveFromEvent(roomID)
		return nil
	}
	s.reconciler.ApplyUpdated(viewer, room)
	return nil
}

// UpdateRoom patches room metadata (rename, mute, images) upstream, then
// reconciles the confirmed state.
func (s *Service) UpdateRoom(ctx context.Context, roomID string, patch RoomPatch) error {
	viewer := s.Viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if err := s.api.UpdateRoom(ctx, roomID, patch); err != nil {
		return &TransportError{Op: "update room", Err: err}
	}
	s.refreshRoom(ctx, viewer, roomID, false)
	return nil
}

// MarkRoomRead clears the viewer's unread state for one room and refreshes
// the global counter.
func (s *Service) MarkRoomRead(ctx context.Context, roomID string) error {
	viewer := s.Viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if err := s.api.MarkRoomRead(ctx, roomID); err != nil {
		return &TransportError{Op: "mark room read", Err: err}
	}
	s.refreshRoom(ctx, viewer, roomID, false)
	if err := s.unread.Refresh(ctx, viewer); err != nil && s.log != nil {
		s.log.Warn("unread refresh after mark-read failed", "error", err)
	}
	return nil
}

// MarkAllRead clears the viewer's unread state everywhere and refreshes the
// global counter.
func (s *Service) MarkAllRead(ctx context.Context) error {
	viewer := s.Viewer()
	if viewer == "" {
		return ErrNotAuthenticated
	}
	if err := s.api.MarkAllRead(ctx, viewer); err != nil {
		return &TransportError{Op: "mark all read", Err: err}
	}
	if err := s.unread.Refresh(ctx, viewer); err != nil && s.log != nil {
		s.log.Warn("unread refresh after mark-all-read failed", "error", err)
	}
	return nil
}

// RefreshUnread re-pulls the global unread counter on demand.
func (s *Service) RefreshUnread(ctx context.Context) error {
	return s.unread.Refresh(ctx, s.Viewer())
}

// reload is the debouncer's sink: it runs the reset fetch on its own
// goroutine so the timer goroutine is never blocked on the network.
func (s *Service) reload(filter chat.FilterCriteria) {
	go func() {
		err := s.LoadFirstPage(context.Background(), filter)
		switch {
		case err == nil, err == ErrStaleResponse:
		default:
			if s.log != nil {
				s.log.Warn("filter reload failed", "tab", filter.Tab, "search", filter.Search, "error", err)
			}
		}
	}()
}

// refreshRoom pulls the confirmed room record and routes it through the
// reconciliation path. Failures only log: the mutation itself already
// succeeded upstream.
func (s *Service) refreshRoom(ctx context.Context, viewer, roomID string, asCreated bool) {
	room, err := s.api.GetRoom(ctx, roomID)
	if err != nil {
		if s.log != nil {
			s.log.Warn("room refresh after mutation failed", "room_id", roomID, "error", err)
		}
		return
	}
	if asCreated {
		s.reconciler.ApplyCreated(viewer, room)
		return
	}
	s.reconciler.ApplyUpdated(viewer, room)
}

// beginReload supersedes any in-flight reload: the previous context is
// cancelled and the generation bumped, so the old response can only be
// discarded.
func (s *Service) beginReload(ctx context.Context, filter chat.FilterCriteria) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
	s.gen++
	if s.cancel != nil {
		s.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return cctx, s.gen
}

func (s *Service) stillCurrent(gen uint64) func() bool {
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.gen == gen
	}
}
