package availability

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Feed is the push-based subscription surface for override state. Every
// write to the store publishes a full-state snapshot for the player it
// touched; subscribers receive the snapshots whose player set intersects
// their own. Slow subscribers are skipped rather than blocked.
type Feed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	playerIDs map[string]struct{}
	ch        chan Snapshot
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		subs: make(map[int]*subscriber),
	}
}

// Subscribe registers interest in the given players. The returned
// unsubscribe func must be called on teardown; leaking subscriptions
// leaks the channel and its goroutine on the sending side.
func (f *Feed) Subscribe(playerIDs []string) (<-chan Snapshot, func()) {
	ids := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		ids[id] = struct{}{}
	}

	sub := &subscriber{
		playerIDs: ids,
		ch:        make(chan Snapshot, 8),
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	f.mu.Unlock()

	unsubscribe := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if s, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, unsubscribe
}

// Publish delivers the snapshot to every subscriber covering at least one
// of its players.
func (f *Feed) Publish(snap Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		if !sub.covers(snap.PlayerIDs) {
			continue
		}
		select {
		case sub.ch <- snap:
		default:
			log.Warn("Dropping availability snapshot for slow subscriber", "players", snap.PlayerIDs)
		}
	}
}

func (s *subscriber) covers(playerIDs []string) bool {
	for _, id := range playerIDs {
		if _, ok := s.playerIDs[id]; ok {
			return true
		}
	}
	return false
}
