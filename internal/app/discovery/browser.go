// Package discovery drives the listing search view: debounced criteria
// changes that replace the result list from page zero, and explicit
// load-more calls that append the next page.
package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"unimarket/internal/app/dto"
	"unimarket/internal/domain/catalog"
)

const (
	defaultDebounce = 400 * time.Millisecond
	defaultPageSize = 16
	sortNewest      = "newest"
)

// API is the slice of the REST client the browser needs.
type API interface {
	SearchListings(ctx context.Context, query dto.ListingQuery) (dto.ListingPage, error)
}

// Filters is the price/condition filter group.
type Filters struct {
	MinPrice  string
	MaxPrice  string
	Condition catalog.Condition
}

// State is the committed view state handed to renderers. Loading marks a
// replace in flight (full skeleton); LoadingMore marks an append in flight
// (inline spinner, existing results stay visible).
type State struct {
	Listings    []dto.Listing
	Page        int
	LastPage    bool
	Loading     bool
	LoadingMore bool
}

// Config tunes the browser. Zero values take the defaults.
type Config struct {
	Debounce time.Duration
	PageSize int
}

// Browser maintains search text, category, and filters, and keeps the
// result list consistent with them. ctx is the view's mount lifetime;
// cancelling it stops the debounce timer and orphans in-flight queries.
type Browser struct {
	api      API
	logger   *slog.Logger
	ctx      context.Context
	debounce time.Duration
	pageSize int
	onUpdate func(State)

	mu          sync.Mutex
	search      string
	category    catalog.Category
	filters     Filters
	listings    []dto.Listing
	page        int
	lastPage    bool
	loading     bool
	loadingMore bool
	generation  uint64
	timer       *time.Timer
}

func New(ctx context.Context, client API, cfg Config, logger *slog.Logger) *Browser {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Browser{
		api:      client,
		logger:   logger,
		ctx:      ctx,
		debounce: debounce,
		pageSize: pageSize,
	}
}

// OnUpdate registers the render hook, fired on every state commit.
func (b *Browser) OnUpdate(fn func(State)) {
	b.mu.Lock()
	b.onUpdate = fn
	b.mu.Unlock()
}

// SetSearch updates the free-text query and schedules a page-0 replace.
func (b *Browser) SetSearch(text string) {
	b.mu.Lock()
	b.search = text
	b.scheduleLocked()
	b.mu.Unlock()
}

// SetCategory updates the category filter and schedules a page-0 replace.
func (b *Browser) SetCategory(category catalog.Category) {
	b.mu.Lock()
	b.category = category
	b.scheduleLocked()
	b.mu.Unlock()
}

// SetFilters updates the filter group and schedules a page-0 replace.
func (b *Browser) SetFilters(filters Filters) {
	b.mu.Lock()
	b.filters = filters
	b.scheduleLocked()
	b.mu.Unlock()
}

// Refresh skips the debounce and replaces the list from page zero now.
func (b *Browser) Refresh() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	generation := b.bumpLocked()
	b.mu.Unlock()
	b.fetch(generation, 0, true)
}

// LoadMore appends the next page. It is a no-op while any fetch is in
// flight or once the server reported the last page.
func (b *Browser) LoadMore() {
	b.mu.Lock()
	if b.lastPage || b.loading || b.loadingMore {
		b.mu.Unlock()
		return
	}
	generation := b.generation
	next := b.page + 1
	b.loadingMore = true
	b.mu.Unlock()

	b.notify()
	b.fetch(generation, next, false)
}

// State returns a copy of the committed view state.
func (b *Browser) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// scheduleLocked (re)arms the debounce timer; every criteria edit within
// the window collapses into one page-0 query.
func (b *Browser) scheduleLocked() {
	b.page = 0
	generation := b.bumpLocked()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() {
		if b.ctx.Err() != nil {
			return
		}
		b.fetch(generation, 0, true)
	})
}

// bumpLocked invalidates every outstanding query and debounce callback.
func (b *Browser) bumpLocked() uint64 {
	b.generation++
	return b.generation
}

func (b *Browser) fetch(generation uint64, page int, replace bool) {
	b.mu.Lock()
	if generation != b.generation {
		if !replace {
			// This LoadMore was superseded before its query went out;
			// release the flag it set so paging is not stuck.
			b.loadingMore = false
		}
		b.mu.Unlock()
		return
	}
	if replace {
		b.loading = true
	}
	query := dto.ListingQuery{
		Search:    b.search,
		Page:      page,
		Size:      b.pageSize,
		Sort:      sortNewest,
		Category:  b.category.String(),
		Condition: b.filters.Condition.String(),
		MinPrice:  b.filters.MinPrice,
		MaxPrice:  b.filters.MaxPrice,
	}
	b.mu.Unlock()
	if replace {
		b.notify()
	}

	result, err := b.api.SearchListings(b.ctx, query)

	b.mu.Lock()
	if generation != b.generation {
		// Criteria changed while this query was in flight; a fresher
		// query owns the list now. Drop the result, but release the busy
		// flags so the view cannot stay stuck if the replacement query
		// never runs (the mount context may be cancelled by then).
		b.loading = false
		b.loadingMore = false
		b.mu.Unlock()
		b.notify()
		return
	}
	b.loading = false
	b.loadingMore = false
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("listing search failed", "page", page, "error", err)
		}
		b.mu.Unlock()
		b.notify()
		return
	}
	if replace {
		b.listings = result.Content
	} else {
		b.listings = append(b.listings, result.Content...)
	}
	b.page = result.Page
	b.lastPage = result.Last
	b.mu.Unlock()
	b.notify()
}

func (b *Browser) notify() {
	b.mu.Lock()
	fn := b.onUpdate
	state := b.stateLocked()
	b.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (b *Browser) stateLocked() State {
	return State{
		Listings:    append([]dto.Listing(nil), b.listings...),
		Page:        b.page,
		LastPage:    b.lastPage,
		Loading:     b.loading,
		LoadingMore: b.loadingMore,
	}
}
