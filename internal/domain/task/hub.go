package task

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyChannel is the Postgres channel the tasks trigger publishes on.
const NotifyChannel = "task_changes"

const subscriberBuffer = 16

type subscriber struct {
	mentorID string
	ch       chan Change
}

// Hub holds one LISTEN connection and fans task changes out to subscribers.
type Hub struct {
	DB     *pgxpool.Pool
	Logger *slog.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

func NewHub(db *pgxpool.Pool, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{DB: db, Logger: logger, subs: map[*subscriber]struct{}{}}
}

// Subscribe returns changes for mentorID, or for every mentor when it is
// empty. The channel is closed when cancel is called or the hub stops.
func (h *Hub) Subscribe(mentorID string) (<-chan Change, func()) {
	sub := &subscriber{mentorID: mentorID, ch: make(chan Change, subscriberBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[sub]; ok {
				delete(h.subs, sub)
				close(sub.ch)
			}
			h.mu.Unlock()
		})
	}
}

// Run listens until ctx is done, reconnecting after failures.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()
	backoff := time.Second
	for {
		err := h.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		h.Logger.Warn("task listener stopped", "error", err, "retry_in", backoff.String())
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (h *Hub) listen(ctx context.Context) error {
	conn, err := h.DB.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+NotifyChannel); err != nil {
		return err
	}
	h.Logger.Info("task listener started", "channel", NotifyChannel)
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		h.dispatch(n.Payload)
	}
}

func (h *Hub) dispatch(payload string) {
	var change Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		h.Logger.Warn("task notification ignored", "error", err)
		return
	}
	h.Publish(change)
}

// Publish delivers change to matching subscribers. Slow subscribers miss
// changes rather than block the listener.
func (h *Hub) Publish(change Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.mentorID != "" && sub.mentorID != change.MentorID {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			h.Logger.Debug("task change dropped for slow subscriber", "mentor_id", change.MentorID)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sub := range h.subs {
		close(sub.ch)
		delete(h.subs, sub)
	}
}
