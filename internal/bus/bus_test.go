package bus

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/gorilla/websocket"
)

func TestMemoryBus(t *testing.T) {
	t.Run("Queue Frames In Order", func(t *testing.T) {
		b := NewMemoryBus()
		defer b.Close()

		var counts []int
		sub := b.SubscribeQueue(func(s models.QueueSnapshot) {
			counts = append(counts, s.QueuedCount)
		})
		defer sub.Unsubscribe()

		for i := 1; i <= 3; i++ {
			b.PublishQueue(models.QueueSnapshot{QueuedCount: i})
		}

		if len(counts) != 3 || counts[0] != 1 || counts[2] != 3 {
			t.Errorf("expected in-order delivery, got %v", counts)
		}
	})

	t.Run("Unsubscribe Stops Delivery", func(t *testing.T) {
		b := NewMemoryBus()
		defer b.Close()

		delivered := 0
		sub := b.SubscribeDrops(func(string) { delivered++ })

		b.PublishDrop("https://example.com/a")
		sub.Unsubscribe()
		b.PublishDrop("https://example.com/b")

		if delivered != 1 {
			t.Errorf("expected 1 delivery, got %d", delivered)
		}
	})

	t.Run("Closed Bus Drops Frames", func(t *testing.T) {
		b := NewMemoryBus()

		delivered := 0
		b.SubscribeDrops(func(string) { delivered++ })
		b.Close()
		b.PublishDrop("https://example.com/a")

		if delivered != 0 {
			t.Errorf("expected no deliveries after close, got %d", delivered)
		}
	})
}

func TestWebSocketBus(t *testing.T) {
	upgrader := websocket.Upgrader{}

	serveFrames := func(frames []frame) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				t.Errorf("upgrade failed: %v", err)
				return
			}
			defer conn.Close()

			for _, f := range frames {
				if err := conn.WriteJSON(f); err != nil {
					return
				}
			}

			// hold the connection open until the client goes away
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}))
	}

	mustPayload := func(v any) json.RawMessage {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		return data
	}

	waitFor := func(t *testing.T, check func() bool) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if check() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatal("timed out waiting for frames")
	}

	t.Run("Dispatches Both Topics", func(t *testing.T) {
		srv := serveFrames([]frame{
			{Topic: TopicQueueUpdate, Payload: mustPayload(models.QueueSnapshot{QueuedCount: 2})},
			{Topic: TopicDrop, Payload: mustPayload("https://open.spotify.com/track/abc")},
			{Topic: "unknown-topic", Payload: mustPayload("ignored")},
			{Topic: TopicQueueUpdate, Payload: mustPayload(models.QueueSnapshot{QueuedCount: 5})},
		})
		defer srv.Close()

		b := NewWebSocketBus(wsURL(srv.URL), shared.NewLogger(io.Discard))
		defer b.Close()

		var mu sync.Mutex
		var counts []int
		var drops []string

		b.SubscribeQueue(func(s models.QueueSnapshot) {
			mu.Lock()
			defer mu.Unlock()
			counts = append(counts, s.QueuedCount)
		})
		b.SubscribeDrops(func(payload string) {
			mu.Lock()
			defer mu.Unlock()
			drops = append(drops, payload)
		})

		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(counts) == 2 && len(drops) == 1
		})

		mu.Lock()
		defer mu.Unlock()
		if counts[0] != 2 || counts[1] != 5 {
			t.Errorf("expected queue frames in arrival order, got %v", counts)
		}
		if drops[0] != "https://open.spotify.com/track/abc" {
			t.Errorf("unexpected drop payload %v", drops)
		}
	})

	t.Run("Malformed Frames Are Skipped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()

			conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`))
			conn.WriteJSON(frame{Topic: TopicDrop, Payload: mustPayload("https://example.com/ok")})

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}))
		defer srv.Close()

		b := NewWebSocketBus(wsURL(srv.URL), shared.NewLogger(io.Discard))
		defer b.Close()

		got := make(chan string, 1)
		b.SubscribeDrops(func(payload string) { got <- payload })

		select {
		case payload := <-got:
			if payload != "https://example.com/ok" {
				t.Errorf("unexpected payload %q", payload)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the valid frame")
		}
	})

	t.Run("Close Is Idempotent", func(t *testing.T) {
		b := NewWebSocketBus("ws://127.0.0.1:1/ws", shared.NewLogger(io.Discard))

		if err := b.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
		if err := b.Close(); err != nil {
			t.Errorf("second close failed: %v", err)
		}
	})
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}
