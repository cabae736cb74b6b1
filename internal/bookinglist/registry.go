package bookinglist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// ErrUnknownCompany is returned by Company for an id with no company row.
var ErrUnknownCompany = errors.New("unknown company")

// DefaultCompanyViews bounds how many company views stay open at once.
const DefaultCompanyViews = 64

// Registry owns the global view and one view per company, created on
// first use. Every view it hands out is loaded and watching. Company
// views beyond the limit are closed least recently used first.
type Registry struct {
	store           Store
	subscriber      Subscriber
	log             logger.Logger
	metrics         *metrics.Metrics
	globalPageSize  int
	companyPageSize int
	maxCompanies    int
	now             func() time.Time

	mu        sync.Mutex
	global    *entry
	companies map[string]*entry
	closed    bool
}

// entry is a view being opened or already open. ready is closed once
// view is set.
type entry struct {
	view     *View
	ready    chan struct{}
	lastUsed time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(store Store, subscriber Subscriber, log logger.Logger, m *metrics.Metrics, globalPageSize, companyPageSize int) *Registry {
	if globalPageSize < 1 {
		globalPageSize = GlobalPageSize
	}
	if companyPageSize < 1 {
		companyPageSize = CompanyPageSize
	}
	return &Registry{
		store:           store,
		subscriber:      subscriber,
		log:             log,
		metrics:         m,
		globalPageSize:  globalPageSize,
		companyPageSize: companyPageSize,
		maxCompanies:    DefaultCompanyViews,
		now:             time.Now,
		companies:       make(map[string]*entry),
	}
}

// SetCompanyLimit changes how many company views may stay open. Values
// below one are ignored.
func (r *Registry) SetCompanyLimit(n int) {
	if n < 1 {
		return
	}
	r.mu.Lock()
	r.maxCompanies = n
	r.mu.Unlock()
}

// Global returns the all-bookings view.
func (r *Registry) Global(ctx context.Context) (*View, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	e := r.global
	if e == nil {
		e = &entry{ready: make(chan struct{})}
		r.global = e
		r.mu.Unlock()
		r.open(ctx, e, "", r.globalPageSize)
	} else {
		r.mu.Unlock()
	}
	return r.await(ctx, e)
}

// Company returns the view of one company's bookings. Ids with no
// company behind them yield ErrUnknownCompany and are not cached.
func (r *Registry) Company(ctx context.Context, companyID string) (*View, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	e, ok := r.companies[companyID]
	r.mu.Unlock()

	if !ok {
		exists, err := r.store.CompanyExists(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up company: %w", err)
		}
		if !exists {
			return nil, ErrUnknownCompany
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}
		e, ok = r.companies[companyID]
		var evicted []*entry
		if !ok {
			evicted = r.evictLocked()
			e = &entry{ready: make(chan struct{}), lastUsed: r.now()}
			r.companies[companyID] = e
		}
		r.mu.Unlock()

		closeEntries(evicted)
		if !ok {
			r.open(ctx, e, companyID, r.companyPageSize)
		}
	}

	v, err := r.await(ctx, e)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	e.lastUsed = r.now()
	r.mu.Unlock()
	return v, nil
}

// open watches then loads a new view and publishes it on e. The load
// runs detached from the caller so a cancelled request cannot leave a
// half-loaded view behind for everyone else. A failed first load still
// yields an empty, watching view; the failure has been logged by Load.
func (r *Registry) open(ctx context.Context, e *entry, companyID string, pageSize int) {
	v := NewView(r.store, companyID, pageSize, r.log, r.metrics)
	if err := v.Watch(r.subscriber); err != nil {
		r.log.Error("failed to watch booking view", "company_id", companyID, "error", err)
	}
	_ = v.Load(context.WithoutCancel(ctx))

	e.view = v
	close(e.ready)

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		v.Close()
	}
}

// await blocks until e is open. A view opened by this caller is always
// returned, even if ctx ended meanwhile.
func (r *Registry) await(ctx context.Context, e *entry) (*View, error) {
	select {
	case <-e.ready:
	default:
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	return e.view, nil
}

// evictLocked drops the least recently used open company views until
// there is room for one more. Views still opening are skipped.
func (r *Registry) evictLocked() []*entry {
	var evicted []*entry
	for len(r.companies) >= r.maxCompanies {
		var (
			oldestID string
			oldest   *entry
		)
		for id, e := range r.companies {
			if !isReady(e) {
				continue
			}
			if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
				oldestID, oldest = id, e
			}
		}
		if oldest == nil {
			break
		}
		delete(r.companies, oldestID)
		evicted = append(evicted, oldest)
	}
	if len(evicted) > 0 {
		r.log.Debug("evicted company booking views", "count", len(evicted))
	}
	return evicted
}

func isReady(e *entry) bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// closeEntries closes the views of ready entries. Entries still opening
// close their own view once open sees the registry closed.
func closeEntries(entries []*entry) {
	for _, e := range entries {
		if isReady(e) {
			e.view.Close()
		}
	}
}

// CompanyViews reports how many company views are open or opening.
func (r *Registry) CompanyViews() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.companies)
}

// Close releases every view.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.companies)+1)
	if r.global != nil {
		entries = append(entries, r.global)
	}
	for _, e := range r.companies {
		entries = append(entries, e)
	}
	r.global = nil
	r.companies = make(map[string]*entry)
	r.closed = true
	r.mu.Unlock()

	closeEntries(entries)
}
