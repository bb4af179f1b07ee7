package room

import (
	"github.com/cantorhq/cantor/internal/dependencies/random"
	"github.com/cantorhq/cantor/internal/model"
)

const (
	// RoomKeyLength is the length of generated room keys
	RoomKeyLength = 6
	// RoomKeyAlphabet is the characters used in room keys (avoid confusing chars)
	RoomKeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry is the process-wide table of live rooms. It is owned by the
// session coordinator and shares its serialization: no internal locking.
type Registry struct {
	rooms  map[model.RoomKey]*Room
	random random.Random
}

// NewRegistry creates an empty Registry
func NewRegistry(rnd random.Random) *Registry {
	return &Registry{
		rooms:  make(map[model.RoomKey]*Room),
		random: rnd,
	}
}

// NewKey generates a room key not currently in use
func (g *Registry) NewKey() model.RoomKey {
	for {
		key := model.RoomKey(g.random.String(RoomKeyLength, RoomKeyAlphabet))
		if _, ok := g.rooms[key]; !ok && key != "" {
			return key
		}
	}
}

// Put stores a room under its key
func (g *Registry) Put(r *Room) error {
	if _, ok := g.rooms[r.Key()]; ok {
		return model.ErrRoomExists
	}
	g.rooms[r.Key()] = r
	return nil
}

// Get looks up a room by key
func (g *Registry) Get(key model.RoomKey) (*Room, error) {
	r, ok := g.rooms[key]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

// Delete removes a room from the table and cancels its timers
func (g *Registry) Delete(key model.RoomKey) {
	if r, ok := g.rooms[key]; ok {
		r.Close()
		delete(g.rooms, key)
	}
}

// Len returns the number of live rooms
func (g *Registry) Len() int {
	return len(g.rooms)
}

// Keys returns the keys of all live rooms
func (g *Registry) Keys() []model.RoomKey {
	keys := make([]model.RoomKey, 0, len(g.rooms))
	for key := range g.rooms {
		keys = append(keys, key)
	}
	return keys
}
