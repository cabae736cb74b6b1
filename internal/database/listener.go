package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/realtime"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// ChangeChannel is the NOTIFY channel fed by the notify_table_change trigger.
const ChangeChannel = "table_changes"

// WatchedTables carry the notify trigger.
var WatchedTables = []string{
	"bookings", "bus_routes", "plane_routes", "bus_companies", "plane_companies", "buses", "employees",
}

// Publisher receives decoded change events
type Publisher interface {
	Publish(ev realtime.ChangeEvent)
}

// Listener turns Postgres notifications into change events
type Listener struct {
	dsn        string
	publisher  Publisher
	log        logger.Logger
	metrics    *metrics.Metrics
	retryDelay time.Duration
}

// NewListener creates a listener on its own connection to dsn
func NewListener(dsn string, publisher Publisher, log logger.Logger, m *metrics.Metrics) *Listener {
	return &Listener{
		dsn:        dsn,
		publisher:  publisher,
		log:        log,
		metrics:    m,
		retryDelay: 2 * time.Second,
	}
}

// Run listens until ctx is cancelled. A lost connection is re-established
// after a fixed delay. Each time listening starts, including the first, a
// resync event is published for every watched table, since changes made
// before LISTEN took effect were never notified.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Error("change listener disconnected", "error", err, "retry_in", l.retryDelay.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}
	l.log.Info("change listener started", "channel", ChangeChannel)

	l.resync()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		ev, err := DecodeNotification(n.Payload)
		if err != nil {
			l.log.Warn("dropping malformed change notification", "error", err)
			continue
		}
		l.publish(ev)
	}
}

func (l *Listener) resync() {
	for _, table := range WatchedTables {
		l.publish(realtime.ChangeEvent{Table: table, Type: realtime.EventResync})
	}
}

func (l *Listener) publish(ev realtime.ChangeEvent) {
	if l.metrics != nil {
		l.metrics.ChangeEvents.WithLabelValues(ev.Table, string(ev.Type)).Inc()
	}
	l.publisher.Publish(ev)
}

// DecodeNotification parses a table_changes payload
func DecodeNotification(payload string) (realtime.ChangeEvent, error) {
	var ev realtime.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("failed to decode notification: %w", err)
	}
	if ev.Table == "" {
		return ev, fmt.Errorf("notification without table")
	}
	switch ev.Type {
	case realtime.EventInsert, realtime.EventUpdate, realtime.EventDelete:
	default:
		return ev, fmt.Errorf("unsupported change type %q", ev.Type)
	}
	return ev, nil
}
