package bookinglist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/realtime"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("booking view closed")

// Store is the record store surface a View reads from
type Store interface {
	ListBookings(ctx context.Context, routeIDs []string) ([]models.Booking, error)
	ListRouteLabels(ctx context.Context, companyID string) ([]models.RouteLabel, error)
	DeleteBooking(ctx context.Context, id string) error
	CompanyExists(ctx context.Context, companyID string) (bool, error)
}

// Subscriber is the change feed a View watches
type Subscriber interface {
	Subscribe(table string, mask realtime.EventType, handler realtime.Handler) *realtime.Subscription
}

// Status is the load state of a View
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
)

const (
	bookingsTable = "bookings"
	routesTable   = "bus_routes"
)

// Page is a rendered list screen
type Page struct {
	Rows       []Row     `json:"bookings"`
	State      ListState `json:"state"`
	TotalPages int       `json:"total_pages"`
	PageSize   int       `json:"page_size"`
	Matches    int       `json:"matches"`
	Stats      Stats     `json:"stats"`
	Status     Status    `json:"status"`
}

// View is a booking snapshot, either of every booking or of one
// company's routes. It is safe for concurrent use.
type View struct {
	companyID string
	pageSize  int
	store     Store
	log       logger.Logger
	metrics   *metrics.Metrics

	mu       sync.RWMutex
	bookings []models.Booking
	routes   map[string]models.RouteLabel
	status   Status
	loading  int
	pending  []models.Booking
	removed  []string
	subs     []*realtime.Subscription
	closed   bool
}

// NewView creates an idle view. An empty companyID covers all bookings.
func NewView(store Store, companyID string, pageSize int, log logger.Logger, m *metrics.Metrics) *View {
	if pageSize < 1 {
		pageSize = GlobalPageSize
	}
	return &View{
		companyID: companyID,
		pageSize:  pageSize,
		store:     store,
		log:       log.With("scope", scopeName(companyID)),
		metrics:   m,
		bookings:  []models.Booking{},
		routes:    map[string]models.RouteLabel{},
		status:    StatusIdle,
	}
}

func scopeName(companyID string) string {
	if companyID == "" {
		return "global"
	}
	return "company"
}

// CompanyID is empty for the global view.
func (v *View) CompanyID() string {
	return v.companyID
}

// PageSize returns the number of rows per page
func (v *View) PageSize() int {
	return v.pageSize
}

// Load fetches routes and bookings and replaces the snapshot. On failure
// the previous snapshot stays in place and the error is returned.
// Row changes applied while a load is in flight are replayed on top of
// the fetched snapshot. The view reports ready once no load is running.
func (v *View) Load(ctx context.Context) error {
	v.beginLoad()
	defer v.endLoad()

	routes, err := v.store.ListRouteLabels(ctx, v.companyID)
	if err != nil {
		return v.fetchFailed("list_routes", err)
	}

	var routeIDs []string
	if v.companyID != "" {
		routeIDs = make([]string, 0, len(routes))
		for _, r := range routes {
			routeIDs = append(routeIDs, r.ID)
		}
	}

	bookings, err := v.store.ListBookings(ctx, routeIDs)
	if err != nil {
		return v.fetchFailed("list_bookings", err)
	}

	v.mu.Lock()
	v.bookings = bookings
	v.routes = routeMap(routes)
	for _, id := range v.removed {
		v.removeLocked(id)
	}
	for _, b := range v.pending {
		v.upsertLocked(b)
	}
	v.mu.Unlock()

	if v.metrics != nil {
		v.metrics.ViewReloads.WithLabelValues(scopeName(v.companyID)).Inc()
	}
	v.log.Debug("booking view loaded", "bookings", len(bookings), "routes", len(routes))
	return nil
}

func (v *View) reloadRoutes(ctx context.Context) error {
	routes, err := v.store.ListRouteLabels(ctx, v.companyID)
	if err != nil {
		return v.fetchFailed("list_routes", err)
	}
	v.mu.Lock()
	v.routes = routeMap(routes)
	v.mu.Unlock()
	return nil
}

func (v *View) fetchFailed(op string, err error) error {
	v.log.Error("failed to load bookings view", "operation", op, "error", err)
	if v.metrics != nil {
		v.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func routeMap(routes []models.RouteLabel) map[string]models.RouteLabel {
	m := make(map[string]models.RouteLabel, len(routes))
	for _, r := range routes {
		m[r.ID] = r
	}
	return m
}

func (v *View) beginLoad() {
	v.mu.Lock()
	v.loading++
	v.status = StatusLoading
	v.mu.Unlock()
}

func (v *View) endLoad() {
	v.mu.Lock()
	v.loading--
	if v.loading == 0 {
		v.status = StatusReady
		v.pending = nil
		v.removed = nil
	}
	v.mu.Unlock()
}

// Delete removes a booking upstream. The local snapshot is left alone;
// it catches up through the change feed or the next Load.
func (v *View) Delete(ctx context.Context, id string) error {
	if err := v.store.DeleteBooking(ctx, id); err != nil {
		v.log.Error("failed to delete booking", "booking_id", id, "error", err)
		if v.metrics != nil {
			v.metrics.StoreErrors.WithLabelValues("delete_booking").Inc()
		}
		return err
	}
	return nil
}

// Apply folds a change event into the snapshot. Booking events carrying
// the row are applied by id; anything the view cannot apply directly
// falls back to a full Load.
func (v *View) Apply(ctx context.Context, ev realtime.ChangeEvent) error {
	switch ev.Table {
	case bookingsTable:
	case routesTable:
		if ev.Type == realtime.EventResync || v.companyID != "" {
			return v.Load(ctx)
		}
		return v.reloadRoutes(ctx)
	case realtime.AllTables:
		if ev.Type == realtime.EventResync {
			return v.Load(ctx)
		}
		return nil
	default:
		return nil
	}

	switch ev.Type {
	case realtime.EventResync:
		return v.Load(ctx)
	case realtime.EventDelete:
		id := ev.ID
		if id == "" && ev.HasRecord() {
			var b models.Booking
			if err := json.Unmarshal(ev.Record, &b); err == nil {
				id = b.ID
			}
		}
		if id == "" {
			return v.Load(ctx)
		}
		v.remove(id)
		return nil
	case realtime.EventInsert, realtime.EventUpdate:
		if !ev.HasRecord() {
			return v.Load(ctx)
		}
		var b models.Booking
		if err := json.Unmarshal(ev.Record, &b); err != nil || b.ID == "" {
			v.log.Warn("undecodable booking change, reloading", "booking_id", ev.ID, "error", err)
			return v.Load(ctx)
		}
		v.upsert(b)
		return nil
	default:
		return nil
	}
}

func (v *View) remove(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.loading > 0 {
		v.removed = append(v.removed, id)
		v.pending = dropPending(v.pending, id)
	}
	v.removeLocked(id)
}

func dropPending(pending []models.Booking, id string) []models.Booking {
	out := pending[:0]
	for _, b := range pending {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func (v *View) removeLocked(id string) {
	for i := range v.bookings {
		if v.bookings[i].ID == id {
			next := make([]models.Booking, 0, len(v.bookings)-1)
			next = append(next, v.bookings[:i]...)
			next = append(next, v.bookings[i+1:]...)
			v.bookings = next
			return
		}
	}
}

// upsert replaces b in place or inserts it keeping newest-first order.
// For company views a booking moved off the company's routes is dropped.
func (v *View) upsert(b models.Booking) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.loading > 0 {
		v.pending = append(v.pending, b)
	}
	v.upsertLocked(b)
}

func (v *View) upsertLocked(b models.Booking) {
	inScope := true
	if v.companyID != "" {
		_, inScope = v.routes[b.RouteID]
	}

	next := make([]models.Booking, 0, len(v.bookings)+1)
	replaced := false
	for _, existing := range v.bookings {
		if existing.ID == b.ID {
			if inScope {
				next = append(next, b)
			}
			replaced = true
			continue
		}
		next = append(next, existing)
	}

	if !replaced && inScope {
		pos := len(next)
		for i := range next {
			if next[i].CreatedAt.Before(b.CreatedAt) {
				pos = i
				break
			}
		}
		next = append(next, models.Booking{})
		copy(next[pos+1:], next[pos:])
		next[pos] = b
	}
	v.bookings = next
}

// Watch subscribes the view to booking and route changes. Handler errors
// are logged; the subscriptions live until Close.
func (v *View) Watch(sub Subscriber) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}

	handle := func(ev realtime.ChangeEvent) {
		if err := v.Apply(context.Background(), ev); err != nil {
			v.log.Error("failed to apply change", "table", ev.Table, "type", string(ev.Type), "error", err)
		}
	}
	v.subs = append(v.subs,
		sub.Subscribe(bookingsTable, realtime.EventAll, handle),
		sub.Subscribe(routesTable, realtime.EventAll, handle),
	)
	return nil
}

// Close releases the view's subscriptions. It is safe to call twice.
func (v *View) Close() {
	v.mu.Lock()
	subs := v.subs
	v.subs = nil
	v.closed = true
	v.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

// Bookings returns a copy of the snapshot, newest first.
func (v *View) Bookings() []models.Booking {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Booking, len(v.bookings))
	copy(out, v.bookings)
	return out
}

// Routes returns a copy of the route lookup.
func (v *View) Routes() map[string]models.RouteLabel {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]models.RouteLabel, len(v.routes))
	for k, r := range v.routes {
		out[k] = r
	}
	return out
}

// Status returns the load state.
func (v *View) Status() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.status
}

// Stats counts the whole snapshot, ignoring any filter.
func (v *View) Stats() Stats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return ComputeStats(v.bookings)
}

// Render derives the list screen for state.
func (v *View) Render(state ListState) Page {
	v.mu.RLock()
	bookings := v.bookings
	routes := v.routes
	status := v.status
	v.mu.RUnlock()

	filtered := Filter(bookings, state.SearchTerm, state.StatusFilter)
	state.CurrentPage = state.page()
	pageItems := Paginate(filtered, state.CurrentPage, v.pageSize)

	rows := make([]Row, 0, len(pageItems))
	for _, b := range pageItems {
		rows = append(rows, NewRow(b, routes))
	}

	return Page{
		Rows:       rows,
		State:      state,
		TotalPages: TotalPages(len(filtered), v.pageSize),
		PageSize:   v.pageSize,
		Matches:    len(filtered),
		Stats:      ComputeStats(bookings),
		Status:     status,
	}
}
