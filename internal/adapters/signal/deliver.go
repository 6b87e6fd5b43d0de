package signal

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/app"
)

// deliver fans the engine's notifications out to their sessions. Sends never
// block; a full buffer or a vanished session costs that recipient the frame
// and nobody else anything.
func (ctl *SignalWSController) deliver(notes []app.Notification) {
	for _, n := range notes {
		conn, ok := ctl.Coord.Conn(n.To)
		if !ok {
			log.Debug().Str("module", "signal").Str("sid", string(n.To)).Msg("recipient gone, dropping")
			continue
		}
		b, err := json.Marshal(n.Payload)
		if err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("marshal notification")
			continue
		}
		if err := conn.TrySend(b); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(n.To)).Msg("send failed, dropping")
		}
	}
}

// isExpectedClose filters the close errors every disconnect produces, so the
// log only carries the surprising ones.
func isExpectedClose(err error) bool {
	if err == nil {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "use of closed network connection") ||
		strings.Contains(s, "websocket: close sent") ||
		strings.Contains(s, "websocket: close 1000") ||
		strings.Contains(s, "websocket: close 1001") ||
		strings.Contains(s, "broken pipe")
}
