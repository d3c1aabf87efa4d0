// services/matchmaking_service.go
package services

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"game-match-service/metrics"
)

var (
	ErrAlreadyQueued  = errors.New("player is already in the matchmaking queue")
	ErrAlreadyInMatch = errors.New("player is already in a live match")
)

type queueEntry struct {
	player     Sender
	enqueuedAt time.Time
}

// MatchmakingService keeps the ordered waiting list and pairs the two
// longest-waiting players whenever it holds at least two entries. One mutex
// serializes enqueue, dequeue and match attempts, so pairing decisions never
// interleave.
type MatchmakingService struct {
	mu       sync.Mutex
	entries  []queueEntry
	registry *RoomRegistry
	onMatch  func(a, b Sender)
}

// NewMatchmakingService wires the queue against the room registry (to uphold
// the one-queue-or-one-room invariant) and the callback invoked with each
// matched pair, oldest entry first.
func NewMatchmakingService(registry *RoomRegistry, onMatch func(a, b Sender)) *MatchmakingService {
	return &MatchmakingService{registry: registry, onMatch: onMatch}
}

// Enqueue appends the player and immediately attempts matches. A player that
// is already waiting or already owns a live room is refused.
func (m *MatchmakingService) Enqueue(p Sender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.player.UserID() == p.UserID() {
			return ErrAlreadyQueued
		}
	}
	if m.registry.RoomForUser(p.UserID()) != nil {
		return ErrAlreadyInMatch
	}

	m.entries = append(m.entries, queueEntry{player: p, enqueuedAt: time.Now()})
	metrics.QueueDepth.Set(float64(len(m.entries)))
	log.WithFields(log.Fields{"user_id": p.UserID(), "queue_depth": len(m.entries)}).
		Info("player joined matchmaking queue")

	m.matchLocked()
	return nil
}

// Dequeue removes the player's entry. Idempotent: removing an absent player
// is a no-op.
func (m *MatchmakingService) Dequeue(userID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.player.UserID() == userID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			metrics.QueueDepth.Set(float64(len(m.entries)))
			log.WithFields(log.Fields{"user_id": userID, "queue_depth": len(m.entries)}).
				Info("player left matchmaking queue")
			return
		}
	}
}

// Len reports the current queue depth.
func (m *MatchmakingService) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// SweepDisconnected drops entries whose connection has gone away. Advisory
// maintenance only: the disconnect path already dequeues immediately.
func (m *MatchmakingService) SweepDisconnected() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.player.Closed() {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	if removed > 0 {
		metrics.QueueDepth.Set(float64(len(m.entries)))
	}
	return removed
}

// matchLocked pops pairs in strict arrival order while possible. Entries are
// appended in enqueue order, so index order is FIFO by enqueue timestamp.
func (m *MatchmakingService) matchLocked() {
	for len(m.entries) >= 2 {
		a, b := m.entries[0].player, m.entries[1].player
		m.entries = m.entries[2:]
		metrics.QueueDepth.Set(float64(len(m.entries)))
		m.onMatch(a, b)
	}
}
