package realtime

import (
	"sync"

	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
)

// DefaultQueueSize bounds the pending events of one subscription.
const DefaultQueueSize = 256

// Handler receives events of a subscription, one at a time and in
// publish order.
type Handler func(ChangeEvent)

// Broker fans change events out to subscriptions
type Broker struct {
	mu        sync.RWMutex
	subs      map[uint64]*Subscription
	nextID    uint64
	queueSize int
	closed    bool
	log       logger.Logger
}

// NewBroker creates a broker. queueSize <= 0 uses DefaultQueueSize.
func NewBroker(log logger.Logger, queueSize int) *Broker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Broker{
		subs:      make(map[uint64]*Subscription),
		queueSize: queueSize,
		log:       log,
	}
}

// Subscribe registers handler for events on table ("*" for all tables)
// whose type matches mask ("*" for all types). Resync events reach every
// subscription of the table regardless of mask.
func (b *Broker) Subscribe(table string, mask EventType, handler Handler) *Subscription {
	if mask == "" {
		mask = EventAll
	}
	sub := &Subscription{
		broker:  b,
		table:   table,
		mask:    mask,
		handler: handler,
		limit:   b.queueSize,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.closeOnce.Do(func() { close(sub.done) })
		return sub
	}
	b.nextID++
	sub.id = b.nextID
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go sub.run()
	b.log.Debug("realtime subscription added", "table", table, "mask", string(mask), "id", sub.id)
	return sub
}

// Unsubscribe releases sub. It is safe to call more than once.
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub != nil {
		sub.Close()
	}
}

// Publish queues ev on every matching subscription. It never blocks on
// a slow subscriber.
func (b *Broker) Publish(ev ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.matches(ev) {
			sub.enqueue(ev)
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close releases all subscriptions. Later subscriptions are born closed.
func (b *Broker) Close() {
	b.mu.Lock()
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscription is the handle returned by Broker.Subscribe
type Subscription struct {
	id      uint64
	broker  *Broker
	table   string
	mask    EventType
	handler Handler
	limit   int

	mu    sync.Mutex
	queue []ChangeEvent

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// Table returns the subscribed table name.
func (s *Subscription) Table() string {
	return s.table
}

// Close stops delivery. An in-flight handler call is allowed to finish.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.id != 0 {
			s.broker.remove(s.id)
			s.broker.log.Debug("realtime subscription removed", "table", s.table, "id", s.id)
		}
	})
}

// Done is closed once the subscription is released.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) matches(ev ChangeEvent) bool {
	if s.table != AllTables && ev.Table != AllTables && s.table != ev.Table {
		return false
	}
	return s.mask == EventAll || ev.Type == EventResync || s.mask == ev.Type
}

func (s *Subscription) enqueue(ev ChangeEvent) {
	s.mu.Lock()
	if len(s.queue) >= s.limit {
		// the subscriber fell behind; drop the backlog and ask for a reload
		s.broker.log.Warn("realtime subscriber overflow, requesting resync", "table", s.table, "dropped", len(s.queue))
		s.queue = append(s.queue[:0], ChangeEvent{Table: s.table, Type: EventResync})
	} else {
		s.queue = append(s.queue, ev)
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) next() (ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return ChangeEvent{}, false
	}
	ev := s.queue[0]
	s.queue[0] = ChangeEvent{}
	s.queue = s.queue[1:]
	return ev, true
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			select {
			case <-s.done:
				return
			default:
			}
			ev, ok := s.next()
			if !ok {
				break
			}
			s.handler(ev)
		}
	}
}
