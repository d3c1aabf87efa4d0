package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"game-match-service/config"
)

// fakeSender records every event a component sends to it, in order.
type fakeSender struct {
	id     string
	userID uint
	name   string

	mu     sync.Mutex
	events []ServerEvent
	closed bool
}

func newFakeSender(userID uint, name string) *fakeSender {
	return &fakeSender{id: uuid.NewString(), userID: userID, name: name}
}

func (f *fakeSender) ID() string       { return f.id }
func (f *fakeSender) UserID() uint     { return f.userID }
func (f *fakeSender) UserName() string { return f.name }

func (f *fakeSender) Send(evt ServerEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.events = append(f.events, evt)
	return true
}

func (f *fakeSender) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSender) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSender) eventsOfType(t string) []ServerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ServerEvent
	for _, e := range f.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeSender) countOfType(t string) int {
	return len(f.eventsOfType(t))
}

func (f *fakeSender) lastOfType(t string) (ServerEvent, bool) {
	evts := f.eventsOfType(t)
	if len(evts) == 0 {
		return ServerEvent{}, false
	}
	return evts[len(evts)-1], true
}

// indexOfType returns the position of the first event of the given type, or
// -1, for asserting causal ordering.
func (f *fakeSender) indexOfType(t string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events {
		if e.Type == t {
			return i
		}
	}
	return -1
}

// fakeStore counts persistence calls and can be told to fail.
type fakeStore struct {
	mu          sync.Mutex
	created     int
	completed   int
	failCreate  bool
	lastSession string
	lastScore1  int
	lastScore2  int
	lastDur     int
}

func (s *fakeStore) CreateSession(gameType string, p1, p2 uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return "", errors.New("persistence unavailable")
	}
	s.created++
	return "session-1", nil
}

func (s *fakeStore) CompleteSession(id string, s1, s2, dur int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	s.lastSession = id
	s.lastScore1 = s1
	s.lastScore2 = s2
	s.lastDur = dur
	return nil
}

func (s *fakeStore) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *fakeStore) completedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// fastGameConfig keeps the production physics but shrinks every timing so
// room lifecycles finish in milliseconds.
func fastGameConfig() config.GameConfig {
	cfg := config.Default()
	cfg.CountdownInterval = time.Millisecond
	cfg.GraceDelay = 20 * time.Millisecond
	return cfg
}
