package duel

import (
	"log"
	"sync"
)

// Registry tracks the one live actor per active room. Actors are created
// lazily on the first join and removed once their room empties.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Actor
	cfg   Config
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		rooms: make(map[string]*Actor),
		cfg:   cfg,
	}
}

// GetOrCreate returns the room's actor, hydrating a new one from the durable
// row's host, status and settings when the room has no live actor yet.
func (r *Registry) GetOrCreate(roomCode string, host string, status string, settings Settings) *Actor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if actor, ok := r.rooms[roomCode]; ok {
		return actor
	}
	actor := NewActor(roomCode, host, status, settings, r.cfg, r.remove)
	r.rooms[roomCode] = actor
	log.Printf("[DUEL-REGISTRY] Started actor for room %s", roomCode)
	return actor
}

// Get returns the live actor for a room, if any.
func (r *Registry) Get(roomCode string) (*Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	actor, ok := r.rooms[roomCode]
	return actor, ok
}

func (r *Registry) remove(roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, roomCode)
	log.Printf("[DUEL-REGISTRY] Removed actor for room %s", roomCode)
}

// Shutdown stops every live actor, used on server teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, actor := range r.rooms {
		actor.Stop()
		delete(r.rooms, code)
	}
}
