// Package console holds the server-side state of the enquiry admin console:
// the current page, the per-page cursors, the loaded records and the loading
// flag, together with the operations staff trigger from the page.
package console

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
)

// DefaultLimitPerPage is the page size used when none is configured
const DefaultLimitPerPage = 15

// Notice messages shown after successful mutations
const (
	MsgAttended = "Enquiry marked as attended"
	MsgDeleted  = "Enquiry deleted"
)

// DeletePrompt is the question asked before an enquiry is deleted
const DeletePrompt = "Are you sure you want to delete this enquiry?"

// Source is what the console needs from the enquiry store
type Source interface {
	Page(ctx context.Context, after *domain.Cursor, limit int) ([]*domain.Enquiry, error)
	Count(ctx context.Context) (int64, error)
	MarkAttended(ctx context.Context, id domain.ID) error
	Delete(ctx context.Context, id domain.ID) error
}

// Console is one staff member's view of the enquiry collection.
// opMu serialises operations; stateMu only guards the committed state, so
// Snapshot and Loading stay readable while a fetch is in flight.
type Console struct {
	src      Source
	notifier Notifier
	limit    int

	opMu sync.Mutex

	stateMu     sync.RWMutex
	mounted     bool
	currentPage int
	totalPages  int
	total       int64
	lastVisible *domain.Cursor
	cursors     map[int]domain.Cursor // page -> cursor of its last record
	records     []*domain.Enquiry
	loaded      []*domain.Enquiry

	loading atomic.Bool
}

// New builds an unmounted console. limit <= 0 uses DefaultLimitPerPage.
func New(src Source, notifier Notifier, limit int) *Console {
	if limit <= 0 {
		limit = DefaultLimitPerPage
	}
	if notifier == nil {
		notifier = Discard{}
	}
	return &Console{
		src:         src,
		notifier:    notifier,
		limit:       limit,
		currentPage: 1,
		cursors:     make(map[int]domain.Cursor),
	}
}

// Snapshot is a read-only copy of the console state for rendering
type Snapshot struct {
	CurrentPage  int
	TotalPages   int
	Total        int64
	LimitPerPage int
	Loading      bool
	Records      []*domain.Enquiry
	Loaded       []*domain.Enquiry
	HasPrevious  bool
	HasNext      bool
}

// begin takes the operation lock and raises the loading flag; the returned
// func undoes both
func (c *Console) begin() func() {
	c.opMu.Lock()
	c.loading.Store(true)
	return func() {
		c.loading.Store(false)
		c.opMu.Unlock()
	}
}

// Mount resets pagination and fetches page 1
func (c *Console) Mount(ctx context.Context) error {
	defer c.begin()()

	c.stateMu.Lock()
	c.currentPage = 1
	c.totalPages = 0
	c.total = 0
	c.lastVisible = nil
	c.cursors = make(map[int]domain.Cursor)
	c.records = nil
	c.loaded = nil
	c.mounted = true
	c.stateMu.Unlock()

	return c.fetch(ctx, 1)
}

// Mounted reports whether Mount has run
func (c *Console) Mounted() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.mounted
}

// FetchPage loads the given page. Page N > 1 continues after the cursor
// recorded for page N-1, so pages must be reached in sequence.
func (c *Console) FetchPage(ctx context.Context, page int) error {
	defer c.begin()()
	return c.fetch(ctx, page)
}

// position reads the current page and page count
func (c *Console) position() (page, totalPages int) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.currentPage, c.totalPages
}

// GoToPreviousPage is a no-op on page 1
func (c *Console) GoToPreviousPage(ctx context.Context) error {
	defer c.begin()()

	page, _ := c.position()
	if page <= 1 {
		return nil
	}
	return c.fetch(ctx, page-1)
}

// GoToNextPage is a no-op on the last page
func (c *Console) GoToNextPage(ctx context.Context) error {
	defer c.begin()()

	page, totalPages := c.position()
	if page >= totalPages {
		return nil
	}
	return c.fetch(ctx, page+1)
}

// MarkAttended sets attended=true on the record and refreshes the current
// page. A failed update is reported to the user and leaves the page as is.
// updated is true once the store accepted the change, even if the refresh
// afterwards failed.
func (c *Console) MarkAttended(ctx context.Context, id domain.ID) (updated bool, err error) {
	defer c.begin()()

	if err := c.src.MarkAttended(ctx, id); err != nil {
		c.notifier.Notify(ctx, Notice{Kind: NoticeError, Message: err.Error()})
		return false, err
	}
	c.notifier.Notify(ctx, Notice{Kind: NoticeSuccess, Message: MsgAttended})
	page, _ := c.position()
	return true, c.fetch(ctx, page)
}

// DeleteEnquiry asks for confirmation, then permanently removes the record
// and refreshes the current page. Declining has no side effects.
func (c *Console) DeleteEnquiry(ctx context.Context, id domain.ID, confirm Confirmer) (bool, error) {
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		return false, nil
	}

	defer c.begin()()

	if err := c.src.Delete(ctx, id); err != nil {
		c.notifier.Notify(ctx, Notice{Kind: NoticeError, Message: err.Error()})
		return false, err
	}
	c.notifier.Notify(ctx, Notice{Kind: NoticeSuccess, Message: MsgDeleted})
	page, _ := c.position()
	return true, c.fetch(ctx, page)
}

// Loading reports whether an operation is in flight
func (c *Console) Loading() bool { return c.loading.Load() }

// Snapshot copies the current state. It does not wait for a running
// operation; Loading tells whether one is in flight.
func (c *Console) Snapshot() Snapshot {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	return Snapshot{
		CurrentPage:  c.currentPage,
		TotalPages:   c.totalPages,
		Total:        c.total,
		LimitPerPage: c.limit,
		Loading:      c.loading.Load(),
		Records:      append([]*domain.Enquiry(nil), c.records...),
		Loaded:       append([]*domain.Enquiry(nil), c.loaded...),
		HasPrevious:  c.currentPage > 1,
		HasNext:      c.currentPage < c.totalPages,
	}
}

// LastVisible returns the cursor of the last record of the most recent batch
func (c *Console) LastVisible() (domain.Cursor, bool) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.lastVisible == nil {
		return domain.Cursor{}, false
	}
	return *c.lastVisible, true
}

// fetch must be called with opMu held. The store is read without stateMu;
// state only changes once both the batch and the count have been read.
func (c *Console) fetch(ctx context.Context, page int) error {
	if page < 1 {
		return domain.ErrInvalidPage
	}

	var after *domain.Cursor
	if page > 1 {
		c.stateMu.RLock()
		cur, ok := c.cursors[page-1]
		c.stateMu.RUnlock()
		if !ok {
			return fmt.Errorf("%w: no cursor for page %d", domain.ErrCursorOutOfSequence, page-1)
		}
		after = &cur
	}

	log := logger.C(ctx)
	batch, err := c.src.Page(ctx, after, c.limit)
	if err != nil {
		log.Error().Err(err).Int("page", page).Msg("fetching enquiries failed")
		return fmt.Errorf("fetching page %d: %w", page, err)
	}
	total, err := c.src.Count(ctx)
	if err != nil {
		log.Error().Err(err).Int("page", page).Msg("counting enquiries failed")
		return fmt.Errorf("counting enquiries: %w", err)
	}

	c.stateMu.Lock()
	c.records = batch
	// loaded accumulates pages 1..page in order
	keep := min((page-1)*c.limit, len(c.loaded))
	c.loaded = append(c.loaded[:keep:keep], batch...)

	if len(batch) > 0 {
		last := domain.CursorOf(batch[len(batch)-1])
		c.lastVisible = &last
		c.cursors[page] = last
	} else {
		delete(c.cursors, page)
	}
	// later cursors were computed against the previous contents of this page
	for p := range c.cursors {
		if p > page {
			delete(c.cursors, p)
		}
	}

	c.total = total
	c.totalPages = domain.TotalPages(total, c.limit)
	c.currentPage = page
	totalPages := c.totalPages
	c.stateMu.Unlock()

	log.Debug().
		Int("page", page).
		Int("records", len(batch)).
		Int64("total", total).
		Int("total_pages", totalPages).
		Msg("enquiries fetched")
	return nil
}
