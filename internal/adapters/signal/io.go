package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/domain"
)

// writePump owns the write side. On any exit it cancels the shared context
// and closes the conn, so the read side never outlives it.
func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn, cancel context.CancelFunc) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid domain.SessionID, c *WsSignalConn, cancel context.CancelFunc) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.limiter.Forget(sid)
		ctl.deliver(ctl.Coord.Disconnect(sid))
	}()

	// A peer that stops ponging is dead even while its TCP side looks open.
	// The deadline bounds how long ReadMessage can block waiting for it.
	pongWait := ctl.cfg.PingPeriod * 10 / 9
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump set deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if !isExpectedClose(err) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			if !ctl.limiter.Allow(sid) {
				log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rate limit exceeded, frame dropped")
				continue
			}
			ctl.handleFrame(sid, data)
		}
	}
}

// handleFrame decodes one inbound frame into its typed event and runs it
// through the engine. Malformed frames are logged and discarded; the
// connection stays open.
func (ctl *SignalWSController) handleFrame(sid domain.SessionID, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	var ev app.Event
	switch env.Type {
	case "createRoom":
		ev = app.CreateRoom{}
	case "joinRoom":
		var p struct {
			RoomKey string `json:"roomKey"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad joinRoom payload")
			return
		}
		ev = app.JoinRoom{Room: domain.RoomKey(p.RoomKey)}
	case "chat":
		var p struct {
			RoomKey string `json:"roomKey"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
			return
		}
		ev = app.Chat{Room: domain.RoomKey(p.RoomKey), Message: p.Message}
	case "kickUser":
		var p struct {
			RoomKey string `json:"roomKey"`
			UserID  string `json:"userId"`
			APIKey  string `json:"apiKey"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad kickUser payload")
			return
		}
		ev = app.KickUser{
			Room:       domain.RoomKey(p.RoomKey),
			Target:     domain.SessionID(p.UserID),
			Credential: domain.Credential(p.APIKey),
		}
	case "leaveRoom":
		var p struct {
			RoomKey string `json:"roomKey"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Error().Err(err).Str("module", "signal").Msg("bad leaveRoom payload")
			return
		}
		ev = app.LeaveRoom{Room: domain.RoomKey(p.RoomKey)}
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		return
	}

	ctl.deliver(ctl.Coord.Dispatch(sid, ev))
}
