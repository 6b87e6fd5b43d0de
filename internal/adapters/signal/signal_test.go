package signal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type captureConn struct {
	frames []core.Frame
}

func (c *captureConn) TrySend(f core.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}

func (c *captureConn) Close() {}

func testController() *SignalWSController {
	cfg := &config.Config{
		ReadLimit:    32768,
		PingPeriod:   54 * time.Second,
		SendBuffer:   32,
		RateLimit:    0, // disabled for decode tests
		RateInterval: time.Second,
	}
	return NewSignalWSController(app.NewCoordinator(), cfg)
}

func lastFrame(t *testing.T, c *captureConn) map[string]any {
	t.Helper()
	if len(c.frames) == 0 {
		t.Fatal("no frames delivered")
	}
	var out map[string]any
	if err := json.Unmarshal(c.frames[len(c.frames)-1], &out); err != nil {
		t.Fatalf("frame %q is not JSON: %v", c.frames[len(c.frames)-1], err)
	}
	return out
}

func TestHandleFrameCreateRoom(t *testing.T) {
	ctl := testController()
	cc := &captureConn{}
	ctl.Coord.Connect("s1", cc, "127.0.0.1:1000")

	ctl.handleFrame("s1", []byte(`{"type":"createRoom"}`))

	frame := lastFrame(t, cc)
	if frame["type"] != "roomCreated" {
		t.Fatalf("frame type = %v, want roomCreated", frame["type"])
	}
	key, _ := frame["roomKey"].(string)
	if len(key) != domain.RoomKeyLen {
		t.Errorf("roomKey = %q, want %d hex chars", key, domain.RoomKeyLen)
	}
	if cred, _ := frame["creatorKey"].(string); cred == "" {
		t.Error("roomCreated carries no creatorKey")
	}
}

func TestHandleFrameChatReachesRoomMates(t *testing.T) {
	ctl := testController()
	c1, c2 := &captureConn{}, &captureConn{}
	ctl.Coord.Connect("s1", c1, "127.0.0.1:1000")
	ctl.Coord.Connect("s2", c2, "127.0.0.1:1001")

	ctl.handleFrame("s1", []byte(`{"type":"createRoom"}`))
	key := lastFrame(t, c1)["roomKey"].(string)

	ctl.handleFrame("s2", []byte(`{"type":"joinRoom","roomKey":"`+key+`"}`))
	ctl.handleFrame("s1", []byte(`{"type":"chat","roomKey":"`+key+`","message":"hi"}`))

	frame := lastFrame(t, c2)
	if frame["type"] != "chat" || frame["message"] != "hi" || frame["from"] != "s1" {
		t.Errorf("chat frame = %v", frame)
	}
}

func TestHandleFrameMalformedIsDiscarded(t *testing.T) {
	ctl := testController()
	cc := &captureConn{}
	ctl.Coord.Connect("s1", cc, "127.0.0.1:1000")
	before := len(cc.frames)

	ctl.handleFrame("s1", []byte(`{not json`))
	ctl.handleFrame("s1", []byte(`{"type":"publicKey"}`))

	if len(cc.frames) != before {
		t.Errorf("malformed or unknown frames produced output: %v", cc.frames[before:])
	}
}

func TestTrySendBackpressure(t *testing.T) {
	conn := &WsSignalConn{send: make(chan core.Frame, 1)}

	if err := conn.TrySend(core.Frame("one")); err != nil {
		t.Fatalf("first TrySend = %v", err)
	}
	if err := conn.TrySend(core.Frame("two")); err != ErrBackpressure {
		t.Errorf("second TrySend = %v, want ErrBackpressure", err)
	}
}

func TestSessionRateLimiter(t *testing.T) {
	rl := NewSessionRateLimiter(2, 100*time.Millisecond)

	if !rl.Allow("s1") || !rl.Allow("s1") {
		t.Fatal("first two frames must pass")
	}
	if rl.Allow("s1") {
		t.Error("third frame inside the window passed")
	}
	if !rl.Allow("s2") {
		t.Error("another session was throttled by s1's window")
	}

	time.Sleep(150 * time.Millisecond)
	if !rl.Allow("s1") {
		t.Error("frame after the window was throttled")
	}
}

func TestSessionRateLimiterDisabled(t *testing.T) {
	rl := NewSessionRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		if !rl.Allow("s1") {
			t.Fatal("disabled limiter throttled")
		}
	}
}
