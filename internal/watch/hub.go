// Package watch implements the subscribe-for-changes primitive: whenever
// any club collection changes, every subscriber receives a fresh full
// snapshot of players, sessions and rounds.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gaolinyi828/mahjong-pro/internal/cache"
	"github.com/gaolinyi828/mahjong-pro/internal/models"
)

// Snapshot is one consistent-enough view of the three collections. It is
// treated as immutable after load; subscribers share the same value.
type Snapshot struct {
	Players  []models.Player      `json:"players"`
	Sessions []models.Session     `json:"sessions"`
	Rounds   []models.RoundRecord `json:"rounds"`
}

// LoadFunc fetches the current snapshot from storage.
type LoadFunc func(ctx context.Context) (*Snapshot, error)

// Hub fans snapshots out to subscribers. Each subscriber channel holds at
// most the latest snapshot: a slow consumer skips intermediate states
// instead of backing up the hub.
type Hub struct {
	load   LoadFunc
	logger *logrus.Logger

	mu      sync.Mutex
	subs    map[int]chan *Snapshot
	nextID  int
	current *Snapshot
}

func NewHub(load LoadFunc, logger *logrus.Logger) *Hub {
	return &Hub{
		load:   load,
		logger: logger,
		subs:   make(map[int]chan *Snapshot),
	}
}

// Subscribe registers a watcher. The current snapshot, when one has been
// loaded, is delivered immediately; afterwards the channel yields the
// latest snapshot after every change. Callers must Unsubscribe when done.
func (h *Hub) Subscribe() (int, <-chan *Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan *Snapshot, 1)
	h.subs[id] = ch
	if h.current != nil {
		ch <- h.current
	}
	return id, ch
}

// Unsubscribe removes a watcher and closes its channel.
func (h *Hub) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Refresh reloads the snapshot and fans it out. Also called directly after
// local writes so the writer's own watchers update without waiting on the
// Redis round trip.
func (h *Hub) Refresh(ctx context.Context) error {
	snap, err := h.load(ctx)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = snap
	for _, ch := range h.subs {
		sendLatest(ch, snap)
	}
	return nil
}

// sendLatest replaces whatever is pending on a subscriber channel with the
// newest snapshot.
func sendLatest(ch chan *Snapshot, snap *Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Run loads the initial snapshot, then follows the Redis change channel
// until the context ends. Notices arriving in a burst (a commit touches
// rounds and totals at once) collapse into a single reload via a short
// debounce window.
func (h *Hub) Run(ctx context.Context) error {
	if err := h.Refresh(ctx); err != nil {
		return err
	}

	sub := cache.Rdb.Subscribe(ctx, cache.ChangeChannel)
	defer sub.Close()
	msgs := sub.Channel()

	const debounce = 100 * time.Millisecond
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			h.logger.WithField("payload", msg.Payload).Debug("change notice")
			timer.Reset(debounce)

		case <-timer.C:
			if err := h.Refresh(ctx); err != nil {
				h.logger.Warnf("snapshot refresh failed: %v", err)
			}
		}
	}
}
