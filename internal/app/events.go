package app

import (
	"github.com/dkeye/Relay/internal/domain"
)

// Event is the closed set of inbound session events. The Coordinator's
// Dispatch switch covers every variant; adding one here without handling it
// there is a compile-visible gap, not a silent default.
type Event interface{ isEvent() }

type CreateRoom struct{}

type JoinRoom struct {
	Room domain.RoomKey
}

type Chat struct {
	Room    domain.RoomKey
	Message string
}

type KickUser struct {
	Room       domain.RoomKey
	Target     domain.SessionID
	Credential domain.Credential
}

type LeaveRoom struct {
	Room domain.RoomKey
}

func (CreateRoom) isEvent() {}
func (JoinRoom) isEvent()   {}
func (Chat) isEvent()       {}
func (KickUser) isEvent()   {}
func (LeaveRoom) isEvent()  {}

// Notification tells the transport who gets which payload. Delivery is best
// effort and entirely the transport's problem.
type Notification struct {
	To      domain.SessionID
	Payload any
}

// Outbound payload type tags, as they appear on the wire.
const (
	TypeConnection   = "connection"
	TypeRoomCreated  = "roomCreated"
	TypeRoomJoined   = "roomJoined"
	TypeMemberList   = "memberListUpdate"
	TypeChat         = "chat"
	TypeKicked       = "kicked"
	TypeLeftRoom     = "leftRoom"
	TypeErrorMessage = "error"
)

type ConnectionPayload struct {
	Type   string           `json:"type"`
	UserID domain.SessionID `json:"userId"`
}

type RoomCreatedPayload struct {
	Type       string            `json:"type"`
	RoomKey    domain.RoomKey    `json:"roomKey"`
	CreatorKey domain.Credential `json:"creatorKey"`
}

type RoomJoinedPayload struct {
	Type     string                   `json:"type"`
	RoomKey  domain.RoomKey           `json:"roomKey"`
	Messages []domain.ChatMessage     `json:"messages"`
	Members  []domain.MembershipEntry `json:"members"`
	Creator  domain.Credential        `json:"creator"`
}

type MemberListPayload struct {
	Type    string                   `json:"type"`
	RoomKey domain.RoomKey           `json:"roomKey"`
	Members []domain.MembershipEntry `json:"members"`
}

type ChatPayload struct {
	Type string `json:"type"`
	domain.ChatMessage
}

type KickedPayload struct {
	Type    string         `json:"type"`
	RoomKey domain.RoomKey `json:"roomKey"`
	Message string         `json:"message"`
}

type LeftRoomPayload struct {
	Type    string         `json:"type"`
	RoomKey domain.RoomKey `json:"roomKey"`
	Message string         `json:"message"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
