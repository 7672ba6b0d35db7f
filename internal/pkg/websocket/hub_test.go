package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func fakeClient(hub *Hub, userID int64) *Client {
	c := &Client{hub: hub, send: make(chan []byte, 4), userID: userID, addr: "test", logger: zerolog.Nop()}
	hub.register <- c
	return c
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			return Message{}, false
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		return m, true
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func TestSendToUserReachesOnlyThatUser(t *testing.T) {
	hub := startHub(t)
	alice := fakeClient(hub, 1)
	bob := fakeClient(hub, 2)

	if err := hub.SendToUser(&Message{Type: "registration_status", UserID: 1, Title: "Confirmed"}); err != nil {
		t.Fatal(err)
	}

	m, ok := receive(t, alice)
	if !ok || m.Title != "Confirmed" || m.Timestamp.IsZero() {
		t.Errorf("alice got %+v, %v", m, ok)
	}
	select {
	case <-bob.send:
		t.Error("bob must not receive alice's notification")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDisconnectUserClosesSockets(t *testing.T) {
	hub := startHub(t)
	c1 := fakeClient(hub, 7)
	c2 := fakeClient(hub, 7)

	hub.DisconnectUser(7)

	for _, c := range []*Client{c1, c2} {
		if _, ok := receive(t, c); ok {
			t.Error("send channel should be closed")
		}
	}
	if n := hub.ClientCount(7); n != 0 {
		t.Errorf("ClientCount = %d, want 0", n)
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	slow := fakeClient(hub, 3)
	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("{}")
	}

	_ = hub.SendToUser(&Message{UserID: 3, Title: "overflow"})

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(3) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHandlerDeliversOverSocket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t)
	h := NewHandler(hub, nil, zerolog.Nop())

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { c.Set("userID", int64(42)) }, h.HandleConnection)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(42) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := hub.SendToUser(&Message{Type: "placement_result", UserID: 42, Title: "Offer"}); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	if m.Type != "placement_result" || m.UserID != 42 {
		t.Errorf("got %+v", m)
	}
}

func TestHandlerRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewHub(zerolog.Nop()), nil, zerolog.Nop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws", nil)
	h.HandleConnection(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://campus.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	req.Header.Set("Origin", "https://campus.example")
	if !check(req) {
		t.Error("allowed origin rejected")
	}
	req.Header.Set("Origin", "https://evil.example")
	if check(req) {
		t.Error("foreign origin accepted")
	}
}
