package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/config"
)

// dialTestServer spins up a real websocket endpoint around one controller.
func dialTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ReadLimit:    32768,
		PingPeriod:   54 * time.Second,
		SendBuffer:   32,
		RateInterval: time.Second,
	}
	ctl := NewSignalWSController(app.NewCoordinator(), cfg)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	var out map[string]any
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return out
}

func TestSessionGreeting(t *testing.T) {
	_, url := dialTestServer(t)
	conn := dial(t, url)

	frame := readFrame(t, conn)
	if frame["type"] != "connection" {
		t.Fatalf("first frame type = %v, want connection", frame["type"])
	}
	if id, _ := frame["userId"].(string); id == "" {
		t.Error("greeting carries no session id")
	}
}

func TestTwoClientsExchangeMessages(t *testing.T) {
	_, url := dialTestServer(t)

	alice := dial(t, url)
	aliceHello := readFrame(t, alice)
	aliceID := aliceHello["userId"].(string)

	if err := alice.WriteJSON(map[string]any{"type": "createRoom"}); err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	created := readFrame(t, alice)
	if created["type"] != "roomCreated" {
		t.Fatalf("frame type = %v, want roomCreated", created["type"])
	}
	roomKey := created["roomKey"].(string)

	bob := dial(t, url)
	readFrame(t, bob) // connection greeting

	if err := bob.WriteJSON(map[string]any{"type": "joinRoom", "roomKey": roomKey}); err != nil {
		t.Fatalf("joinRoom: %v", err)
	}
	joined := readFrame(t, bob)
	if joined["type"] != "roomJoined" {
		t.Fatalf("frame type = %v, want roomJoined", joined["type"])
	}
	members, _ := joined["members"].([]any)
	if len(members) != 2 {
		t.Errorf("roomJoined members = %v, want 2 entries", joined["members"])
	}

	// Alice sees the refreshed member list from Bob's join.
	update := readFrame(t, alice)
	if update["type"] != "memberListUpdate" {
		t.Fatalf("frame type = %v, want memberListUpdate", update["type"])
	}

	if err := alice.WriteJSON(map[string]any{"type": "chat", "roomKey": roomKey, "message": "hello"}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	chat := readFrame(t, bob)
	if chat["type"] != "chat" || chat["message"] != "hello" || chat["from"] != aliceID {
		t.Errorf("chat frame = %v", chat)
	}

	// The sender gets no echo: the next thing Alice can receive should only
	// come from Bob leaving.
	if err := bob.WriteJSON(map[string]any{"type": "leaveRoom", "roomKey": roomKey}); err != nil {
		t.Fatalf("leaveRoom: %v", err)
	}
	next := readFrame(t, alice)
	if next["type"] != "memberListUpdate" {
		t.Errorf("sender received %v, want only the memberListUpdate from the leave", next["type"])
	}
}

func TestDisconnectDeletesAbandonedRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ReadLimit:    32768,
		PingPeriod:   54 * time.Second,
		SendBuffer:   32,
		RateInterval: time.Second,
	}
	coord := app.NewCoordinator()
	ctl := NewSignalWSController(coord, cfg)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn := dial(t, url)
	readFrame(t, conn)
	if err := conn.WriteJSON(map[string]any{"type": "createRoom"}); err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	readFrame(t, conn)

	if got := coord.RoomCount(); got != 1 {
		t.Fatalf("RoomCount() = %d, want 1", got)
	}

	_ = conn.Close()

	// The read pump notices the close asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for coord.RoomCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("room survived its only member disconnecting")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// A peer that goes silent without ever sending a close frame must still be
// swept out once it stops answering pings.
func TestUnresponsivePeerIsSweptOut(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		ReadLimit:    32768,
		PingPeriod:   100 * time.Millisecond,
		SendBuffer:   32,
		RateInterval: time.Second,
	}
	coord := app.NewCoordinator()
	ctl := NewSignalWSController(coord, cfg)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleWS(context.Background(), c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn := dial(t, url)
	readFrame(t, conn)
	if err := conn.WriteJSON(map[string]any{"type": "createRoom"}); err != nil {
		t.Fatalf("createRoom: %v", err)
	}
	readFrame(t, conn)

	if got := coord.RoomCount(); got != 1 {
		t.Fatalf("RoomCount() = %d, want 1", got)
	}

	// Stop reading entirely. The client pongs only while a read is in
	// flight, so from here the server's pings go unanswered and its read
	// deadline has to fire.
	deadline := time.Now().Add(2 * time.Second)
	for coord.RoomCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("room retained a member that stopped answering pings")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
