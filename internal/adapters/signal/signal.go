// Package signal is the WebSocket adapter: it upgrades connections, pumps
// frames, decodes inbound events, and delivers the engine's notifications.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Coord   *app.Coordinator
	cfg     *config.Config
	limiter *SessionRateLimiter
}

func NewSignalWSController(coord *app.Coordinator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Coord:   coord,
		cfg:     cfg,
		limiter: NewSessionRateLimiter(cfg.RateLimit, cfg.RateInterval),
	}
}

// WsSignalConn wraps one websocket with a buffered non-blocking send side.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request, mints the session id, and starts the pumps.
func (ctl *SignalWSController) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	sid := domain.SessionID(uuid.NewString())
	addr := c.Request.RemoteAddr
	log.Info().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("client", c.GetString("client_token")).
		Str("addr", addr).
		Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}

	// Register and queue the greeting before the read pump can see any
	// client frame, so "connection" is always the first thing delivered.
	ctl.deliver(ctl.Coord.Connect(sid, conn, addr))

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn, cancel)
	go ctl.readPump(ctx, sid, conn, cancel)
}
