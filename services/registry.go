// services/registry.go
package services

import (
	"sync"

	"game-match-service/metrics"
)

// RoomRegistry tracks live rooms by id plus a secondary player→room index.
// Both indexes are mutated under one lock so a disconnecting player can never
// observe a room that has already been released (or the other way round).
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[string]*MatchRoom
	byUser map[uint]string
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:  make(map[string]*MatchRoom),
		byUser: make(map[uint]string),
	}
}

func (r *RoomRegistry) Add(room *MatchRoom, user1, user2 uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = room
	r.byUser[user1] = room.ID
	r.byUser[user2] = room.ID
	metrics.LiveRooms.Set(float64(len(r.rooms)))
}

// Remove releases a room and both player mappings.
func (r *RoomRegistry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		return
	}
	delete(r.rooms, roomID)
	for uid, rid := range r.byUser {
		if rid == roomID {
			delete(r.byUser, uid)
		}
	}
	metrics.LiveRooms.Set(float64(len(r.rooms)))
}

// RoomForUser returns the room a player currently belongs to, if any.
func (r *RoomRegistry) RoomForUser(userID uint) *MatchRoom {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rid, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	return r.rooms[rid]
}

func (r *RoomRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// All snapshots the live rooms, for shutdown sweeps.
func (r *RoomRegistry) All() []*MatchRoom {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*MatchRoom, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out
}
