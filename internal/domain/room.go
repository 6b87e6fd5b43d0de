package domain

// Room holds the member set and the message log. All mutation goes through
// the registries; the struct itself is just state.
type Room struct {
	Key        RoomKey
	CreatorKey Credential
	Members    map[SessionID]struct{}
	Messages   []ChatMessage
}

// NewRoom avoids raw literals in registries and keeps construction obvious.
func NewRoom(key RoomKey, creator Credential) *Room {
	return &Room{
		Key:        key,
		CreatorKey: creator,
		Members:    make(map[SessionID]struct{}),
	}
}

// MembershipEntry is the client-facing member descriptor: the session id plus
// the address it connected from.
type MembershipEntry struct {
	SessionID SessionID `json:"userId"`
	Addr      string    `json:"addr"`
}
