package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (r *recorder) handle(ev ChangeEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBroker_DeliversInOrder(t *testing.T) {
	b := NewBroker(logger.NewNop(), 0)
	defer b.Close()

	rec := &recorder{}
	b.Subscribe("bookings", EventAll, rec.handle)

	for _, id := range []string{"1", "2", "3"} {
		b.Publish(ChangeEvent{Table: "bookings", Type: EventInsert, ID: id})
	}

	require.Eventually(t, func() bool { return rec.len() == 3 }, time.Second, 5*time.Millisecond)
	got := rec.snapshot()
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "3", got[2].ID)
}

func TestBroker_TableAndMaskFiltering(t *testing.T) {
	b := NewBroker(logger.NewNop(), 0)
	defer b.Close()

	deletes := &recorder{}
	all := &recorder{}
	b.Subscribe("bookings", EventDelete, deletes.handle)
	b.Subscribe(AllTables, EventAll, all.handle)

	b.Publish(ChangeEvent{Table: "bookings", Type: EventInsert, ID: "a"})
	b.Publish(ChangeEvent{Table: "buses", Type: EventDelete, ID: "b"})
	b.Publish(ChangeEvent{Table: "bookings", Type: EventDelete, ID: "c"})
	b.Publish(ChangeEvent{Table: "bookings", Type: EventResync})

	require.Eventually(t, func() bool { return all.len() == 4 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return deletes.len() == 2 }, time.Second, 5*time.Millisecond)

	got := deletes.snapshot()
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, EventResync, got[1].Type)
}

func TestBroker_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker(logger.NewNop(), 0)
	defer b.Close()

	rec := &recorder{}
	sub := b.Subscribe("bookings", EventAll, rec.handle)
	assert.Equal(t, 1, b.Len())

	b.Unsubscribe(sub)
	sub.Close()
	assert.Equal(t, 0, b.Len())

	b.Publish(ChangeEvent{Table: "bookings", Type: EventInsert, ID: "x"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, rec.len())

	select {
	case <-sub.Done():
	default:
		t.Fatal("subscription not marked done")
	}
}

func TestBroker_OverflowBecomesResync(t *testing.T) {
	b := NewBroker(logger.NewNop(), 2)
	defer b.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	rec := &recorder{}
	first := true
	b.Subscribe("bookings", EventAll, func(ev ChangeEvent) {
		if first {
			first = false
			close(started)
			<-release
		}
		rec.handle(ev)
	})

	b.Publish(ChangeEvent{Table: "bookings", Type: EventInsert, ID: "1"})
	<-started

	for _, id := range []string{"2", "3", "4"} {
		b.Publish(ChangeEvent{Table: "bookings", Type: EventInsert, ID: id})
	}
	close(release)

	require.Eventually(t, func() bool { return rec.len() == 2 }, time.Second, 5*time.Millisecond)
	got := rec.snapshot()
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, EventResync, got[1].Type)
	assert.Equal(t, "bookings", got[1].Table)
}

func TestBroker_CloseReleasesAll(t *testing.T) {
	b := NewBroker(logger.NewNop(), 0)
	s1 := b.Subscribe("bookings", EventAll, func(ChangeEvent) {})
	s2 := b.Subscribe("buses", EventAll, func(ChangeEvent) {})

	b.Close()
	assert.Equal(t, 0, b.Len())
	<-s1.Done()
	<-s2.Done()

	late := b.Subscribe("bookings", EventAll, func(ChangeEvent) {})
	<-late.Done()
	assert.Equal(t, 0, b.Len())
}

func TestParseEventType(t *testing.T) {
	typ, ok := ParseEventType("")
	assert.True(t, ok)
	assert.Equal(t, EventAll, typ)

	typ, ok = ParseEventType("DELETE")
	assert.True(t, ok)
	assert.Equal(t, EventDelete, typ)

	_, ok = ParseEventType("TRUNCATE")
	assert.False(t, ok)
}
