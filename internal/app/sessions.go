package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// SessionEntry binds a live connection to the address it came from. The conn
// handle is owned here for the lifetime of the connection.
type SessionEntry struct {
	Conn core.SignalConnection
	Addr string
}

type SessionRegistry struct {
	sessions map[domain.SessionID]SessionEntry
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[domain.SessionID]SessionEntry)}
}

func (r *SessionRegistry) Add(sid domain.SessionID, conn core.SignalConnection, addr string) {
	r.sessions[sid] = SessionEntry{Conn: conn, Addr: addr}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("addr", addr).Msg("session registered")
}

func (r *SessionRegistry) Get(sid domain.SessionID) (SessionEntry, bool) {
	e, ok := r.sessions[sid]
	return e, ok
}

func (r *SessionRegistry) Remove(sid domain.SessionID) {
	delete(r.sessions, sid)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("session removed")
}
