package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"docdetect/internal/logger"
)

func startHub(t *testing.T) (*HubService, *httptest.Server) {
	t.Helper()

	hub := NewHubService(logger.New(io.Discard, false))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if !hub.Register(conn) {
			conn.Close()
			return
		}
		defer hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	t.Cleanup(func() {
		cancel()
		server.Close()
	})
	return hub, server
}

func waitForClients(t *testing.T, hub *HubService, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", n, hub.GetClientCount())
}

func TestHub_PublishReachesViewer(t *testing.T) {
	hub, server := startHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.Publish(PredictionEvent{
		RequestID:  "req-1",
		Filename:   "scan.png",
		Kind:       "image",
		TotalCount: 2,
		Statistics: map[string]int{"stamp": 2},
		Width:      640,
		Height:     480,
		Timestamp:  time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var event PredictionEvent
	if err := json.Unmarshal(message, &event); err != nil {
		t.Fatalf("invalid event JSON: %v", err)
	}
	if event.Filename != "scan.png" || event.TotalCount != 2 || event.Statistics["stamp"] != 2 {
		t.Errorf("unexpected event %+v", event)
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, server := startHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_PublishWithoutViewersQueuesNothing(t *testing.T) {
	hub := NewHubService(logger.New(io.Discard, false))

	hub.Publish(PredictionEvent{Filename: "x.png"})
	if len(hub.broadcast) != 0 {
		t.Errorf("expected no queued events without viewers, got %d", len(hub.broadcast))
	}
}

func TestHub_PublishWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHubService(logger.New(io.Discard, false))
	// A viewer that is never written to, since Run is not started.
	hub.clients[&websocket.Conn{}] = true

	done := make(chan struct{})
	go func() {
		// Nothing drains the queue: once full, events are dropped.
		for i := 0; i < 200; i++ {
			hub.Publish(PredictionEvent{Filename: "x.png"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("expected a full queue, got %d of %d", len(hub.broadcast), cap(hub.broadcast))
	}
}

func TestHub_RegisterAfterStop(t *testing.T) {
	hub := NewHubService(logger.New(io.Discard, false))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if hub.Register(nil) {
		t.Error("Register should report false after the hub stopped")
	}
	hub.Unregister(nil)
}
