package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// waitForConnections polls the hub until it holds want connections or the
// deadline passes.
func waitForConnections(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub has %d connections, want %d", hub.ConnectionCount(), want)
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return client
}

func TestHandleWS_ConnectionSurvivesHandlerRequest(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	client := dialTestServer(t, srv)
	defer client.Close(websocket.StatusNormalClosure, "")

	// The connection must stay registered while the client is idle; it is
	// not tied to the upgrade request's lifetime.
	waitForConnections(t, hub, 1)
	time.Sleep(300 * time.Millisecond)
	if got := hub.ConnectionCount(); got != 1 {
		t.Fatalf("connection dropped while client still open: hub has %d", got)
	}
}

func TestHandleWS_BroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	client := dialTestServer(t, srv)
	defer client.Close(websocket.StatusNormalClosure, "")
	waitForConnections(t, hub, 1)

	hub.BroadcastEvent(context.Background(), "board.snapshot", map[string]string{"pipeline": "cases"})

	readCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, data, err := client.Read(readCtx)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if msg.Type != "board.snapshot" {
		t.Errorf("frame type = %q, want board.snapshot", msg.Type)
	}
}

func TestHandleWS_ClientCloseUnregisters(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	client := dialTestServer(t, srv)
	waitForConnections(t, hub, 1)

	if err := client.Close(websocket.StatusNormalClosure, ""); err != nil {
		t.Fatalf("close: %v", err)
	}
	waitForConnections(t, hub, 0)
}

func TestHandleWS_OnConnectSnapshotDelivered(t *testing.T) {
	hub := NewHub()
	hub.OnConnect = func(context.Context) []Message {
		return []Message{{Type: "board.snapshot", Payload: json.RawMessage(`{"pipeline":"cases"}`)}}
	}
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	client := dialTestServer(t, srv)
	defer client.Close(websocket.StatusNormalClosure, "")

	readCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, data, err := client.Read(readCtx)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if msg.Type != "board.snapshot" {
		t.Errorf("initial frame type = %q, want board.snapshot", msg.Type)
	}
}
