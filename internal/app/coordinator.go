// Package app is the room/session coordination engine: the registries, the
// inbound event set, and the Coordinator that turns events into outbound
// notifications.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// keyAttempts bounds room-key regeneration on collision.
const keyAttempts = 5

// Coordinator owns the registries and serializes every mutation, from the
// socket side and the REST side alike, behind one lock. That is what makes
// "room empties, room disappears" and "directory mirrors member set" atomic:
// no event ever observes a half-applied mutation.
type Coordinator struct {
	mu        sync.Mutex
	creds     *CredentialRegistry
	rooms     *RoomRegistry
	sessions  *SessionRegistry
	directory *MembershipDirectory
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		creds:     NewCredentialRegistry(),
		rooms:     NewRoomRegistry(),
		sessions:  NewSessionRegistry(),
		directory: NewMembershipDirectory(),
	}
}

// Connect registers a fresh session and greets it with its id.
func (c *Coordinator) Connect(sid domain.SessionID, conn core.SignalConnection, addr string) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions.Add(sid, conn, addr)
	return []Notification{{To: sid, Payload: ConnectionPayload{Type: TypeConnection, UserID: sid}}}
}

// Dispatch applies one inbound event and returns the notifications the
// transport must deliver.
func (c *Coordinator) Dispatch(sid domain.SessionID, ev Event) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ev := ev.(type) {
	case CreateRoom:
		return c.handleCreateRoom(sid)
	case JoinRoom:
		return c.handleJoin(sid, ev.Room)
	case Chat:
		return c.handleChat(sid, ev.Room, ev.Message)
	case KickUser:
		return c.handleKick(sid, ev)
	case LeaveRoom:
		return c.handleLeave(sid, ev.Room)
	default:
		log.Warn().Str("module", "app.coordinator").Str("sid", string(sid)).Msg("unknown event")
		return nil
	}
}

// Disconnect sweeps the session out of every room it is in, then forgets it.
// The transport is gone, so the session itself gets nothing.
func (c *Coordinator) Disconnect(sid domain.SessionID) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	var notes []Notification
	for _, key := range c.rooms.Keys() {
		room, ok := c.rooms.Get(key)
		if !ok {
			continue
		}
		if _, member := room.Members[sid]; !member {
			continue
		}
		notes = append(notes, c.removeAndBroadcast(key, sid)...)
	}
	c.sessions.Remove(sid)
	return notes
}

func (c *Coordinator) handleCreateRoom(sid domain.SessionID) []Notification {
	cred, err := domain.NewCredential()
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("mint credential")
		return []Notification{{To: sid, Payload: ErrorPayload{Type: TypeErrorMessage, Message: "could not create room"}}}
	}
	key, err := c.newKey()
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("mint room key")
		return []Notification{{To: sid, Payload: ErrorPayload{Type: TypeErrorMessage, Message: "could not create room"}}}
	}
	c.rooms.Create(key, cred)
	if err := c.creds.Register(cred, key); err != nil {
		log.Warn().Err(err).Str("module", "app.coordinator").Str("room", string(key)).Msg("credential clash on create")
	}
	c.rooms.AddMember(key, sid)
	c.directory.Upsert(key, sid, c.addrOf(sid))
	return []Notification{{To: sid, Payload: RoomCreatedPayload{Type: TypeRoomCreated, RoomKey: key, CreatorKey: cred}}}
}

func (c *Coordinator) handleJoin(sid domain.SessionID, key domain.RoomKey) []Notification {
	room, ok := c.rooms.Get(key)
	if !ok {
		log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(key)).Msg("join of unknown room")
		return []Notification{{To: sid, Payload: ErrorPayload{Type: TypeErrorMessage, Message: "room not found"}}}
	}
	c.rooms.AddMember(key, sid)
	c.directory.Upsert(key, sid, c.addrOf(sid))

	messages := make([]domain.ChatMessage, len(room.Messages))
	copy(messages, room.Messages)

	notes := []Notification{{To: sid, Payload: RoomJoinedPayload{
		Type:     TypeRoomJoined,
		RoomKey:  key,
		Messages: messages,
		Members:  c.directory.Snapshot(key),
		Creator:  room.CreatorKey,
	}}}
	return append(notes, c.memberList(key, sid)...)
}

func (c *Coordinator) handleChat(sid domain.SessionID, key domain.RoomKey, text string) []Notification {
	room, ok := c.rooms.Get(key)
	if !ok {
		log.Debug().Str("module", "app.coordinator").Str("room", string(key)).Msg("chat for unknown room dropped")
		return nil
	}
	if _, member := room.Members[sid]; !member {
		log.Debug().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(key)).Msg("chat from non-member dropped")
		return nil
	}
	msg := domain.NewChatMessage(key, sid, text)
	if err := c.rooms.AppendMessage(key, msg); err != nil {
		return nil
	}
	payload := ChatPayload{Type: TypeChat, ChatMessage: msg}
	var notes []Notification
	for member := range room.Members {
		if member == sid {
			continue
		}
		notes = append(notes, Notification{To: member, Payload: payload})
	}
	return notes
}

func (c *Coordinator) handleKick(sid domain.SessionID, ev KickUser) []Notification {
	room, ok := c.rooms.Get(ev.Room)
	if !ok {
		return nil
	}
	// A wrong credential gets no reply at all, so probing a room key never
	// reveals whether it exists.
	if ev.Credential == "" || ev.Credential != room.CreatorKey {
		log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(ev.Room)).Msg("unauthorized kick ignored")
		return nil
	}
	if _, member := room.Members[ev.Target]; !member {
		return nil
	}
	notes := c.removeAndBroadcast(ev.Room, ev.Target)
	if _, connected := c.sessions.Get(ev.Target); connected {
		notes = append(notes, Notification{To: ev.Target, Payload: KickedPayload{
			Type:    TypeKicked,
			RoomKey: ev.Room,
			Message: "you were removed from the room",
		}})
	}
	return notes
}

// handleLeave answers the leaver whenever the room exists, member or not.
// The removal itself is a no-op for a non-member.
func (c *Coordinator) handleLeave(sid domain.SessionID, key domain.RoomKey) []Notification {
	if !c.rooms.Has(key) {
		return nil
	}
	notes := c.removeAndBroadcast(key, sid)
	return append(notes, Notification{To: sid, Payload: LeftRoomPayload{
		Type:    TypeLeftRoom,
		RoomKey: key,
		Message: "you left the room",
	}})
}

// removeAndBroadcast takes the session out of both the registry and the
// directory in one step, so no caller can leave them disagreeing. When the
// room survives, the remaining members get a fresh snapshot.
func (c *Coordinator) removeAndBroadcast(key domain.RoomKey, sid domain.SessionID) []Notification {
	if deleted := c.rooms.RemoveMember(key, sid); deleted {
		c.directory.Drop(key)
		return nil
	}
	c.directory.Remove(key, sid)
	return c.memberList(key, sid)
}

// memberList builds memberListUpdate notifications for every current member
// except the excluded one.
func (c *Coordinator) memberList(key domain.RoomKey, exclude domain.SessionID) []Notification {
	room, ok := c.rooms.Get(key)
	if !ok {
		return nil
	}
	payload := MemberListPayload{Type: TypeMemberList, RoomKey: key, Members: c.directory.Snapshot(key)}
	var notes []Notification
	for member := range room.Members {
		if member == exclude {
			continue
		}
		notes = append(notes, Notification{To: member, Payload: payload})
	}
	return notes
}

func (c *Coordinator) newKey() (domain.RoomKey, error) {
	for i := 0; i < keyAttempts; i++ {
		key, err := domain.NewRoomKey()
		if err != nil {
			return "", err
		}
		if !c.rooms.Has(key) {
			return key, nil
		}
	}
	return "", domain.ErrKeySpaceExhausted
}

func (c *Coordinator) addrOf(sid domain.SessionID) string {
	entry, ok := c.sessions.Get(sid)
	if !ok {
		return ""
	}
	return entry.Addr
}

// Conn exposes the transport handle for delivery. Sessions that vanished
// simply report false; delivery skips them.
func (c *Coordinator) Conn(sid domain.SessionID) (core.SignalConnection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.sessions.Get(sid)
	if !ok {
		return nil, false
	}
	return entry.Conn, true
}
