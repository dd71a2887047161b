package roomlist

import (
	"context"
	"log/slog"

	"linkup/internal/domain/chat"
)

const defaultPageLimit = 15

// RoomLister is the slice of the upstream chat API the fetcher consumes.
// A nil pagination result means the server omitted or mangled its pagination
// block; the fetcher substitutes the safe fallback.
type RoomLister interface {
	ListRooms(ctx context.Context, viewerID string, page, limit int, filter chat.FilterCriteria) ([]chat.RoomRecord, *chat.PaginationState, error)
}

// Fetcher turns (page, filter, search) into store mutations: a page-1 fetch
// replaces the list, later pages append. Fail loud on first load, fail soft
// on pagination.
type Fetcher struct {
	api   RoomLister
	store *Store
	limit int
	log   *slog.Logger
}

// NewFetcher builds a fetcher over the shared store. limit <= 0 falls back to
// the default page size.
func NewFetcher(api RoomLister, store *Store, limit int, log *slog.Logger) *Fetcher {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return &Fetcher{api: api, store: store, limit: limit, log: log}
}

// FirstPage runs a reset fetch under filter. stillCurrent, when non-nil, is
// consulted after the response arrives: a response belonging to a superseded
// reload is discarded without touching the store (last-intent-wins).
//
// On transport failure the list is cleared and the error surfaces to the
// caller — the UI shows an empty state with a retry affordance.
func (f *Fetcher) FirstPage(ctx context.Context, viewerID string, filter chat.FilterCriteria, stillCurrent func() bool) error {
	filter = filter.Normalized()
	since := f.store.Version()

	rooms, pg, err := f.api.ListRooms(ctx, viewerID, 1, f.limit, filter)
	if stillCurrent != nil && !stillCurrent() {
		return ErrStaleResponse
	}
	if err != nil {
		f.store.Clear()
		return &TransportError{Op: "fetch rooms page 1", Err: err}
	}
	if pg == nil {
		fallback := chat.FallbackPagination(1)
		pg = &fallback
	}
	f.store.ReplaceFromFetch(rooms, *pg, since)
	return nil
}

// NextPage appends the next page under filter. It reports whether a fetch was
// performed at all: when pagination says there is nothing more, it is a
// no-op. On transport failure existing data is left intact — the caller just
// stops its loading indicator.
func (f *Fetcher) NextPage(ctx context.Context, viewerID string, filter chat.FilterCriteria, stillCurrent func() bool) (bool, error) {
	filter = filter.Normalized()
	current := f.store.Pagination()
	if !current.HasMore() {
		return false, nil
	}
	page := current.CurrentPage + 1

	rooms, pg, err := f.api.ListRooms(ctx, viewerID, page, f.limit, filter)
	if stillCurrent != nil && !stillCurrent() {
		return true, ErrStaleResponse
	}
	if err != nil {
		if f.log != nil {
			f.log.Warn("load-more fetch failed", "page", page, "error", err)
		}
		return true, &TransportError{Op: "fetch rooms page n", Err: err}
	}
	if pg == nil {
		fallback := chat.FallbackPagination(page)
		pg = &fallback
	}
	f.store.AppendFromFetch(rooms, *pg)
	return true, nil
}
