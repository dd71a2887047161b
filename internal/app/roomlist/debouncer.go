package roomlist

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"linkup/internal/domain/chat"
)

const defaultSearchWindow = 300 * time.Millisecond

// ReloadFunc receives the filter a reload should run under. Implementations
// are expected to return quickly and perform the fetch elsewhere.
type ReloadFunc func(chat.FilterCriteria)

// Debouncer converts a stream of raw search/tab intents into a minimal
// sequence of reloads:
//
//   - a tab change fires immediately — the user made a discrete selection;
//   - a search change waits for a 300 ms idle window, except that clearing
//     the search fires immediately;
//   - consecutive identical (search, tab) pairs never fire twice;
//   - nothing fires until Arm() — the consumer's first explicit load — and
//     until the viewer is authenticated.
type Debouncer struct {
	mu        sync.Mutex
	debounced func(func())
	reload    ReloadFunc
	authed    func() bool

	current chat.FilterCriteria
	last    *chat.FilterCriteria
	armed   bool
}

// DebouncerOption customizes a Debouncer.
type DebouncerOption func(*debouncerConfig)

type debouncerConfig struct {
	window time.Duration
	authed func() bool
}

// WithWindow overrides the search idle window. Tests use a short one.
func WithWindow(d time.Duration) DebouncerOption {
	return func(c *debouncerConfig) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithAuthCheck gates reloads on viewer authentication.
func WithAuthCheck(fn func() bool) DebouncerOption {
	return func(c *debouncerConfig) { c.authed = fn }
}

// NewDebouncer builds a debouncer that invokes reload for each effective
// intent.
func NewDebouncer(reload ReloadFunc, opts ...DebouncerOption) *Debouncer {
	cfg := debouncerConfig{window: defaultSearchWindow}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Debouncer{
		debounced: debounce.New(cfg.window),
		reload:    reload,
		authed:    cfg.authed,
		current:   chat.FilterCriteria{Tab: chat.TabAll},
	}
}

// Arm enables reload firing. Called after the first explicit load completes
// so a spurious reload never races initial data.
func (d *Debouncer) Arm() {
	d.mu.Lock()
	d.armed = true
	d.mu.Unlock()
}

// Disarm suppresses reloads again, e.g. on logout.
func (d *Debouncer) Disarm() {
	d.mu.Lock()
	d.armed = false
	d.last = nil
	d.mu.Unlock()
}

// Sync records the filter of a load performed outside the debouncer, so the
// next identical intent does not refire.
func (d *Debouncer) Sync(filter chat.FilterCriteria) {
	norm := filter.Normalized()
	d.mu.Lock()
	d.current = norm
	d.last = &norm
	d.mu.Unlock()
}

// Current returns the latest intent, normalized.
func (d *Debouncer) Current() chat.FilterCriteria {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.Normalized()
}

// SetSearch records a search text change. An empty query fires immediately;
// anything else waits out the idle window.
func (d *Debouncer) SetSearch(text string) {
	d.mu.Lock()
	d.current.Search = text
	immediate := d.current.Normalized().Search == ""
	d.mu.Unlock()

	if immediate {
		d.fire()
		return
	}
	d.debounced(d.fire)
}

// SetTab records a tab change and fires immediately.
func (d *Debouncer) SetTab(tab chat.Tab) {
	d.mu.Lock()
	d.current.Tab = tab
	d.mu.Unlock()
	d.fire()
}

// fire reloads with whatever the latest intent is by the time it runs. The
// debounce window collapses bursts down to a single call, and the
// distinct-until-changed check on the normalized pair drops echoes.
func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.armed || (d.authed != nil && !d.authed()) {
		d.mu.Unlock()
		return
	}
	desired := d.current.Normalized()
	if d.last != nil && d.last.Equal(desired) {
		d.mu.Unlock()
		return
	}
	d.last = &desired
	reload := d.reload
	d.mu.Unlock()

	if reload != nil {
		reload(desired)
	}
}
