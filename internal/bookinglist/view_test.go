package bookinglist

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/realtime"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

var scenarioRoutes = []models.RouteLabel{
	{ID: "r1", Origin: "Luanda", Destination: "Huambo"},
	{ID: "r2", Origin: "Benguela", Destination: "Lubango"},
}

func newTestView(store Store, companyID string, pageSize int) *View {
	return NewView(store, companyID, pageSize, logger.NewNop(), metrics.NewNop())
}

func loadedGlobalView(t *testing.T, bookings []models.Booking) (*View, *mockStore) {
	t.Helper()
	store := new(mockStore)
	store.On("ListRouteLabels", mock.Anything, "").Return(scenarioRoutes, nil)
	store.On("ListBookings", mock.Anything, []string(nil)).Return(bookings, nil).Once()

	v := newTestView(store, "", GlobalPageSize)
	require.NoError(t, v.Load(context.Background()))
	return v, store
}

func recordOf(t *testing.T, b models.Booking) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(b)
	require.NoError(t, err)
	return data
}

func TestView_StartsIdleAndEmpty(t *testing.T) {
	v := newTestView(new(mockStore), "", GlobalPageSize)
	assert.Equal(t, StatusIdle, v.Status())
	assert.Empty(t, v.Bookings())

	page := v.Render(NewListState())
	assert.Empty(t, page.Rows)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.State.CurrentPage)
	assert.Equal(t, Stats{}, page.Stats)
}

func TestView_LoadAndRender(t *testing.T) {
	v, store := loadedGlobalView(t, numberedBookings(12))
	store.AssertExpectations(t)
	assert.Equal(t, StatusReady, v.Status())

	state := NewListState()
	page := v.Render(state)
	assert.Len(t, page.Rows, 5)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 12, page.Matches)
	assert.Equal(t, 12, page.Stats.Total)
	assert.Equal(t, "bk-00", page.Rows[0].ID)
	assert.Equal(t, "Luanda - Huambo", page.Rows[0].RouteName)

	state.NextPage(page.TotalPages)
	state.NextPage(page.TotalPages)
	page = v.Render(state)
	assert.Len(t, page.Rows, 2)
	assert.Equal(t, 3, page.State.CurrentPage)

	state.SetSearchTerm("passenger 11")
	page = v.Render(state)
	assert.Equal(t, 1, page.State.CurrentPage)
	assert.Equal(t, []string{"bk-11"}, rowIDs(page.Rows))
	assert.Equal(t, 12, page.Stats.Total)
}

func TestView_RenderNoMatches(t *testing.T) {
	v, _ := loadedGlobalView(t, scenarioBookings())

	state := NewListState()
	state.SetSearchTerm("zzz")
	page := v.Render(state)

	assert.Empty(t, page.Rows)
	assert.Equal(t, 0, page.Matches)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.State.CurrentPage)
	assert.Equal(t, 2, page.Stats.Total)
}

func TestView_LoadFailureKeepsPreviousData(t *testing.T) {
	v, store := loadedGlobalView(t, scenarioBookings())
	store.On("ListBookings", mock.Anything, []string(nil)).Return(nil, errors.New("connection reset")).Once()

	err := v.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"a1", "b2"}, ids(v.Bookings()))
	assert.Equal(t, StatusReady, v.Status())
}

func TestView_FirstLoadFailureLeavesEmptyList(t *testing.T) {
	store := new(mockStore)
	store.On("ListRouteLabels", mock.Anything, "").Return(nil, errors.New("timeout"))

	v := newTestView(store, "", GlobalPageSize)
	assert.Error(t, v.Load(context.Background()))
	assert.Empty(t, v.Bookings())
	store.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
}

func TestView_CompanyScope(t *testing.T) {
	store := new(mockStore)
	store.On("ListRouteLabels", mock.Anything, "c1").Return(scenarioRoutes, nil)
	store.On("ListBookings", mock.Anything, []string{"r1", "r2"}).Return(scenarioBookings(), nil)

	v := newTestView(store, "c1", CompanyPageSize)
	require.NoError(t, v.Load(context.Background()))

	page := v.Render(NewListState())
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Rows, 2)
	store.AssertExpectations(t)
}

func TestView_CompanyWithoutRoutesHasNoBookings(t *testing.T) {
	store := new(mockStore)
	store.On("ListRouteLabels", mock.Anything, "c2").Return([]models.RouteLabel{}, nil)
	store.On("ListBookings", mock.Anything, []string{}).Return([]models.Booking{}, nil)

	v := newTestView(store, "c2", CompanyPageSize)
	require.NoError(t, v.Load(context.Background()))
	assert.Empty(t, v.Bookings())
	store.AssertNotCalled(t, "ListBookings", mock.Anything, []string(nil))
}

func TestView_DeleteLeavesSnapshotUntilChange(t *testing.T) {
	v, store := loadedGlobalView(t, scenarioBookings())
	store.On("DeleteBooking", mock.Anything, "a1").Return(nil).Once()

	require.NoError(t, v.Delete(context.Background(), "a1"))
	assert.Equal(t, []string{"a1", "b2"}, ids(v.Bookings()))

	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventDelete, ID: "a1",
	}))
	assert.Equal(t, []string{"b2"}, ids(v.Bookings()))
}

func TestView_DeleteFailure(t *testing.T) {
	v, store := loadedGlobalView(t, scenarioBookings())
	store.On("DeleteBooking", mock.Anything, "b2").Return(errors.New("permission denied"))

	assert.Error(t, v.Delete(context.Background(), "b2"))
	assert.Equal(t, []string{"a1", "b2"}, ids(v.Bookings()))
}

func TestView_ApplyInsertAndUpdate(t *testing.T) {
	v, _ := loadedGlobalView(t, scenarioBookings())
	ctx := context.Background()

	newest := models.Booking{
		ID:            "c3",
		RouteID:       "r1",
		Passengers:    models.Passengers{{Name: "Carla"}},
		BookingStatus: models.BookingStatusPending,
		CreatedAt:     baseTime.Add(time.Hour),
	}
	require.NoError(t, v.Apply(ctx, realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventInsert, ID: "c3", Record: recordOf(t, newest),
	}))
	assert.Equal(t, []string{"c3", "a1", "b2"}, ids(v.Bookings()))

	middle := models.Booking{ID: "m4", RouteID: "r2", CreatedAt: baseTime.Add(-30 * time.Minute)}
	require.NoError(t, v.Apply(ctx, realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventInsert, ID: "m4", Record: recordOf(t, middle),
	}))
	assert.Equal(t, []string{"c3", "a1", "m4", "b2"}, ids(v.Bookings()))

	updated := scenarioBookings()[0]
	updated.BookingStatus = models.BookingStatusConfirmed
	require.NoError(t, v.Apply(ctx, realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventUpdate, ID: "a1", Record: recordOf(t, updated),
	}))
	assert.Equal(t, []string{"c3", "a1", "m4", "b2"}, ids(v.Bookings()))
	assert.Equal(t, 2, v.Stats().Confirmed)
}

func TestView_ApplyWithoutRecordReloads(t *testing.T) {
	v, store := loadedGlobalView(t, scenarioBookings())
	store.On("ListBookings", mock.Anything, []string(nil)).Return(scenarioBookings()[1:], nil).Once()

	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventUpdate, ID: "a1",
	}))
	assert.Equal(t, []string{"b2"}, ids(v.Bookings()))
	store.AssertNumberOfCalls(t, "ListBookings", 2)
}

func TestView_ApplyResyncReloads(t *testing.T) {
	v, store := loadedGlobalView(t, scenarioBookings())
	store.On("ListBookings", mock.Anything, []string(nil)).Return([]models.Booking{}, nil).Once()

	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventResync,
	}))
	assert.Empty(t, v.Bookings())
}

func TestView_ApplyIgnoresOtherTables(t *testing.T) {
	v, store := loadedGlobalView(t, scenarioBookings())

	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "buses", Type: realtime.EventDelete, ID: "a1",
	}))
	assert.Len(t, v.Bookings(), 2)
	store.AssertNumberOfCalls(t, "ListBookings", 1)
}

func TestView_RouteChangeRefreshesLabels(t *testing.T) {
	store := new(mockStore)
	store.On("ListRouteLabels", mock.Anything, "").Return(scenarioRoutes, nil).Once()
	store.On("ListBookings", mock.Anything, []string(nil)).Return(scenarioBookings(), nil).Once()
	v := newTestView(store, "", GlobalPageSize)
	require.NoError(t, v.Load(context.Background()))

	renamed := []models.RouteLabel{{ID: "r1", Origin: "Luanda", Destination: "Malanje"}}
	store.On("ListRouteLabels", mock.Anything, "").Return(renamed, nil).Once()

	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "bus_routes", Type: realtime.EventUpdate, ID: "r1",
	}))
	page := v.Render(NewListState())
	assert.Equal(t, "Luanda - Malanje", page.Rows[0].RouteName)
	assert.Equal(t, "N/A - N/A", page.Rows[1].RouteName)
	store.AssertNumberOfCalls(t, "ListBookings", 1)
}

func TestView_CompanyDropsBookingMovedOffItsRoutes(t *testing.T) {
	store := new(mockStore)
	store.On("ListRouteLabels", mock.Anything, "c1").Return(scenarioRoutes, nil)
	store.On("ListBookings", mock.Anything, []string{"r1", "r2"}).Return(scenarioBookings(), nil)
	v := newTestView(store, "c1", CompanyPageSize)
	require.NoError(t, v.Load(context.Background()))

	moved := scenarioBookings()[0]
	moved.RouteID = "elsewhere"
	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventUpdate, ID: "a1", Record: recordOf(t, moved),
	}))
	assert.Equal(t, []string{"b2"}, ids(v.Bookings()))

	foreign := models.Booking{ID: "z9", RouteID: "other", CreatedAt: baseTime}
	require.NoError(t, v.Apply(context.Background(), realtime.ChangeEvent{
		Table: "bookings", Type: realtime.EventInsert, ID: "z9", Record: recordOf(t, foreign),
	}))
	assert.Equal(t, []string{"b2"}, ids(v.Bookings()))
}

func TestView_WatchAndClose(t *testing.T) {
	broker := realtime.NewBroker(logger.NewNop(), 0)
	defer broker.Close()

	v, _ := loadedGlobalView(t, scenarioBookings())
	require.NoError(t, v.Watch(broker))
	assert.Equal(t, 2, broker.Len())

	broker.Publish(realtime.ChangeEvent{Table: "bookings", Type: realtime.EventDelete, ID: "b2"})
	require.Eventually(t, func() bool {
		return len(v.Bookings()) == 1
	}, time.Second, 5*time.Millisecond)

	v.Close()
	v.Close()
	assert.Equal(t, 0, broker.Len())
	assert.ErrorIs(t, v.Watch(broker), ErrClosed)

	broker.Publish(realtime.ChangeEvent{Table: "bookings", Type: realtime.EventDelete, ID: "a1"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"a1"}, ids(v.Bookings()))
}

func TestView_RenderPastTheLastPage(t *testing.T) {
	v, _ := loadedGlobalView(t, scenarioBookings())

	for _, p := range []int{7, math.MaxInt, 1<<61 + 1} {
		var page Page
		require.NotPanics(t, func() {
			page = v.Render(ListState{CurrentPage: p})
		})
		assert.Empty(t, page.Rows)
		assert.Equal(t, p, page.State.CurrentPage)
		assert.Equal(t, 1, page.TotalPages)
		assert.Equal(t, 2, page.Matches)
	}
}

// blockingLoads makes each ListBookings call wait for its own release
// channel, in call order.
func blockingLoads(store *mockStore, started chan<- struct{}, releases []chan struct{}, results [][]models.Booking) {
	store.On("ListRouteLabels", mock.Anything, "").Return(scenarioRoutes, nil)
	for i := range releases {
		release := releases[i]
		store.On("ListBookings", mock.Anything, []string(nil)).
			Run(func(mock.Arguments) {
				started <- struct{}{}
				<-release
			}).
			Return(results[i], nil).Once()
	}
}

func TestView_StaysLoadingUntilLastLoadFinishes(t *testing.T) {
	store := new(mockStore)
	started := make(chan struct{}, 2)
	releases := []chan struct{}{make(chan struct{}), make(chan struct{})}
	blockingLoads(store, started, releases, [][]models.Booking{scenarioBookings(), scenarioBookings()[:1]})

	v := newTestView(store, "", GlobalPageSize)
	done := []chan error{make(chan error, 1), make(chan error, 1)}
	for i := range done {
		ch := done[i]
		go func() { ch <- v.Load(context.Background()) }()
	}
	<-started
	<-started
	assert.Equal(t, StatusLoading, v.Status())

	close(releases[0])
	select {
	case err := <-done[0]:
		require.NoError(t, err)
	case err := <-done[1]:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("load did not finish")
	}
	assert.Equal(t, StatusLoading, v.Status())
	assert.Equal(t, StatusLoading, v.Render(NewListState()).Status)

	close(releases[1])
	require.Eventually(t, func() bool {
		return v.Status() == StatusReady
	}, time.Second, 5*time.Millisecond)
}

func TestView_ChangesDuringLoadSurviveIt(t *testing.T) {
	store := new(mockStore)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	blockingLoads(store, started, []chan struct{}{release}, [][]models.Booking{scenarioBookings()})

	v := newTestView(store, "", GlobalPageSize)
	done := make(chan error, 1)
	go func() { done <- v.Load(context.Background()) }()
	<-started

	fresh := models.Booking{ID: "c3", RouteID: "r1", BookingStatus: models.BookingStatusPending, CreatedAt: baseTime.Add(time.Hour)}
	ctx := context.Background()
	require.NoError(t, v.Apply(ctx, realtime.ChangeEvent{Table: "bookings", Type: realtime.EventInsert, ID: "c3", Record: recordOf(t, fresh)}))
	require.NoError(t, v.Apply(ctx, realtime.ChangeEvent{Table: "bookings", Type: realtime.EventDelete, ID: "b2"}))

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"c3", "a1"}, ids(v.Bookings()))
	assert.Equal(t, StatusReady, v.Status())
}

func rowIDs(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
