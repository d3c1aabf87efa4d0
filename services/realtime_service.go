// services/realtime_service.go
package services

import (
	log "github.com/sirupsen/logrus"

	"game-match-service/config"
)

// RealtimeService is the seam between the connection gateway and the match
// subsystem: every inbound websocket event lands on one of its Handle
// methods. It owns the matchmaking queue and the room registry, constructed
// explicitly at startup and injected into the handlers (no package-level
// singletons, so tests spin up independent instances).
type RealtimeService struct {
	cfg      config.GameConfig
	store    SessionStore
	registry *RoomRegistry
	queue    *MatchmakingService
}

func NewRealtimeService(cfg config.GameConfig, store SessionStore, registry *RoomRegistry) *RealtimeService {
	svc := &RealtimeService{
		cfg:      cfg,
		store:    store,
		registry: registry,
	}
	svc.queue = NewMatchmakingService(registry, svc.startMatch)
	return svc
}

// Queue exposes the matchmaking queue, for the cleanup worker and health
// endpoint.
func (s *RealtimeService) Queue() *MatchmakingService { return s.queue }

// Registry exposes the room registry, for the health endpoint.
func (s *RealtimeService) Registry() *RoomRegistry { return s.registry }

func (s *RealtimeService) HandleJoinQueue(c Sender) {
	if err := s.queue.Enqueue(c); err != nil {
		c.Send(errorEvent(err.Error()))
		return
	}
	c.Send(ServerEvent{Type: EvtQueueJoined})
}

func (s *RealtimeService) HandleLeaveQueue(c Sender) {
	s.queue.Dequeue(c.UserID())
	c.Send(ServerEvent{Type: EvtQueueLeft})
}

func (s *RealtimeService) HandleReady(c Sender) {
	room := s.registry.RoomForUser(c.UserID())
	if room == nil {
		c.Send(errorEvent("no active match to ready up for"))
		return
	}
	if err := room.Ready(c); err != nil {
		c.Send(errorEvent(err.Error()))
	}
}

func (s *RealtimeService) HandlePaddleMove(c Sender, x float64) {
	room := s.registry.RoomForUser(c.UserID())
	if room == nil {
		// Late frames after room teardown are expected, not protocol misuse.
		return
	}
	room.HandlePaddleMove(c, x)
}

// HandleDisconnect removes the player from wherever they are. A player is in
// at most one queue entry or one room, never both.
func (s *RealtimeService) HandleDisconnect(c Sender) {
	s.queue.Dequeue(c.UserID())
	if room := s.registry.RoomForUser(c.UserID()); room != nil {
		room.HandleDisconnect(c)
	}
}

// Shutdown destroys all live rooms, for process exit.
func (s *RealtimeService) Shutdown() {
	for _, room := range s.registry.All() {
		room.Shutdown()
	}
}

// startMatch is the queue's pairing callback: builds the room, indexes both
// players and notifies each with the opponent's display name.
func (s *RealtimeService) startMatch(a, b Sender) {
	room := NewMatchRoom(s.cfg, s.store, s.registry, a, b)
	s.registry.Add(room, a.UserID(), b.UserID())

	a.Send(ServerEvent{Type: EvtMatchFound, Data: MatchFoundData{RoomID: room.ID, OpponentName: b.UserName()}})
	b.Send(ServerEvent{Type: EvtMatchFound, Data: MatchFoundData{RoomID: room.ID, OpponentName: a.UserName()}})

	log.WithFields(log.Fields{
		"room_id": room.ID, "player1_id": a.UserID(), "player2_id": b.UserID(),
	}).Info("match found")
}
