// Package analytics records gameplay events (connections, respawns) to SQLite
// with batched background writes. A nil *Tracker is valid and records nothing.
package analytics

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Event types
const (
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtShipRespawn  = "ship_respawn"
)

const (
	queueSize     = 1024
	flushBatch    = 50
	flushInterval = 5 * time.Second
)

// Event is a single trackable event
type Event struct {
	Type      string
	PlayerID  uint32
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Tracker enqueues events and persists them from a single writer goroutine
type Tracker struct {
	db     *DB
	logger *log.Logger
	events chan Event
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewTracker starts the background writer
func NewTracker(db *DB, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	t := &Tracker{
		db:     db,
		logger: logger,
		events: make(chan Event, queueSize),
		stop:   make(chan struct{}),
	}
	t.wg.Add(1)
	go t.writer()
	return t
}

// Track enqueues an event without blocking. Events are dropped when the
// queue is full or the tracker is stopped.
func (t *Tracker) Track(evtType string, playerID uint32, sessionID string, data any) {
	if t == nil {
		return
	}
	evt := Event{
		Type:      evtType,
		PlayerID:  playerID,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			evt.Data = string(raw)
		}
	}
	select {
	case <-t.stop:
		return
	default:
	}
	select {
	case t.events <- evt:
	default:
	}
}

// Stop flushes pending events and waits for the writer to exit
func (t *Tracker) Stop() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
	t.wg.Wait()
}

func (t *Tracker) writer() {
	defer t.wg.Done()

	batch := make([]Event, 0, 64)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-t.events:
			batch = append(batch, evt)
			if len(batch) >= flushBatch {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-t.stop:
		drain:
			for {
				select {
				case evt := <-t.events:
					batch = append(batch, evt)
				default:
					break drain
				}
			}
			t.flush(batch)
			return
		}
	}
}

func (t *Tracker) flush(events []Event) {
	if t.db == nil || len(events) == 0 {
		return
	}
	tx, err := t.db.conn.Begin()
	if err != nil {
		t.logger.Error("analytics begin tx", "err", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		t.logger.Error("analytics prepare", "err", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: int64(evt.PlayerID), Valid: evt.PlayerID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			t.logger.Error("analytics insert", "type", evt.Type, "err", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.logger.Error("analytics commit", "err", err)
	}
}

// EventCounts returns counts of each event type for the last N days
func (t *Tracker) EventCounts(days int) (map[string]int, error) {
	if t == nil || t.db == nil {
		return nil, nil
	}
	rows, err := t.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// PlayerCount returns the number of distinct players seen in the last N days
func (t *Tracker) PlayerCount(days int) (int, error) {
	if t == nil || t.db == nil {
		return 0, nil
	}
	var count int
	err := t.db.conn.QueryRow(`
		SELECT COUNT(DISTINCT player_id) FROM analytics_events
		WHERE player_id IS NOT NULL AND created_at >= date('now', '-' || ? || ' days')
	`, days).Scan(&count)
	return count, err
}
