package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/domain"
)

// RoomRegistry is the in-memory room table. It carries no lock of its own:
// the Coordinator serializes every call.
type RoomRegistry struct {
	rooms map[domain.RoomKey]*domain.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomKey]*domain.Room)}
}

func (r *RoomRegistry) Create(key domain.RoomKey, creator domain.Credential) *domain.Room {
	room := domain.NewRoom(key, creator)
	r.rooms[key] = room
	log.Info().Str("module", "app.rooms").Str("room", string(key)).Msg("room created")
	return room
}

func (r *RoomRegistry) Get(key domain.RoomKey) (*domain.Room, bool) {
	room, ok := r.rooms[key]
	return room, ok
}

func (r *RoomRegistry) Has(key domain.RoomKey) bool {
	_, ok := r.rooms[key]
	return ok
}

func (r *RoomRegistry) Count() int { return len(r.rooms) }

func (r *RoomRegistry) Keys() []domain.RoomKey {
	out := make([]domain.RoomKey, 0, len(r.rooms))
	for key := range r.rooms {
		out = append(out, key)
	}
	return out
}

// AddMember is idempotent; adding an existing member changes nothing.
func (r *RoomRegistry) AddMember(key domain.RoomKey, sid domain.SessionID) {
	room, ok := r.rooms[key]
	if !ok {
		return
	}
	room.Members[sid] = struct{}{}
	log.Info().Str("module", "app.rooms").Str("room", string(key)).Str("sid", string(sid)).Msg("member added")
}

// RemoveMember drops the member and reports whether that deleted the room.
// A room never outlives its last member.
func (r *RoomRegistry) RemoveMember(key domain.RoomKey, sid domain.SessionID) (deleted bool) {
	room, ok := r.rooms[key]
	if !ok {
		return false
	}
	if _, member := room.Members[sid]; !member {
		return false
	}
	delete(room.Members, sid)
	log.Info().Str("module", "app.rooms").Str("room", string(key)).Str("sid", string(sid)).Msg("member removed")
	if len(room.Members) == 0 {
		delete(r.rooms, key)
		log.Info().Str("module", "app.rooms").Str("room", string(key)).Msg("room deleted, last member gone")
		return true
	}
	return false
}

func (r *RoomRegistry) AppendMessage(key domain.RoomKey, msg domain.ChatMessage) error {
	room, ok := r.rooms[key]
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.Messages = append(room.Messages, msg)
	return nil
}
