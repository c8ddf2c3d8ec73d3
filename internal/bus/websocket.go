package bus

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/gorilla/websocket"
)

// reconnectDelay is the pause between connection attempts when the daemon
// is unreachable or the stream drops.
const reconnectDelay = 2 * time.Second

// WebSocketBus is the daemon-backed [Bus]. A single goroutine owns the
// connection, decodes frames, and dispatches them inline, which preserves
// per-topic arrival order.
type WebSocketBus struct {
	url    string
	logger *log.Logger
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	closed   bool
	done     chan struct{}
	nextID   int
	queueFns map[int]func(models.QueueSnapshot)
	dropFns  map[int]func(string)
}

// NewWebSocketBus connects to the daemon's event stream at url and starts
// the read loop. The loop reconnects until Close is called, so a daemon
// restart does not strand the subscribers.
func NewWebSocketBus(url string, logger *log.Logger) *WebSocketBus {
	b := &WebSocketBus{
		url:      url,
		logger:   logger,
		dialer:   websocket.DefaultDialer,
		done:     make(chan struct{}),
		queueFns: make(map[int]func(models.QueueSnapshot)),
		dropFns:  make(map[int]func(string)),
	}

	go b.run()

	return b
}

func (b *WebSocketBus) SubscribeQueue(fn func(models.QueueSnapshot)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.queueFns[id] = fn

	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.queueFns, id)
	}}
}

func (b *WebSocketBus) SubscribeDrops(fn func(string)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.dropFns[id] = fn

	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.dropFns, id)
	}}
}

func (b *WebSocketBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (b *WebSocketBus) run() {
	for {
		select {
		case <-b.done:
			return
		default:
		}

		conn, _, err := b.dialer.Dial(b.url, nil)
		if err != nil {
			b.logger.Debug("event stream unreachable", "url", b.url, "error", err)
			select {
			case <-b.done:
				return
			case <-time.After(reconnectDelay):
				continue
			}
		}

		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			conn.Close()
			return
		}
		b.conn = conn
		b.mu.Unlock()

		b.logger.Debug("event stream connected", "url", b.url)
		b.readLoop(conn)

		b.mu.Lock()
		b.conn = nil
		closed := b.closed
		b.mu.Unlock()
		if closed {
			return
		}

		select {
		case <-b.done:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (b *WebSocketBus) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			b.logger.Debug("event stream closed", "error", err)
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			b.logger.Warn("discarding malformed event frame", "error", err)
			continue
		}

		b.dispatch(f)
	}
}

func (b *WebSocketBus) dispatch(f frame) {
	switch f.Topic {
	case TopicQueueUpdate:
		var snapshot models.QueueSnapshot
		if err := json.Unmarshal(f.Payload, &snapshot); err != nil {
			b.logger.Warn("discarding malformed queue frame", "error", err)
			return
		}

		b.mu.Lock()
		fns := make([]func(models.QueueSnapshot), 0, len(b.queueFns))
		for _, fn := range b.queueFns {
			fns = append(fns, fn)
		}
		b.mu.Unlock()

		for _, fn := range fns {
			fn(snapshot)
		}
	case TopicDrop:
		var payload string
		if err := json.Unmarshal(f.Payload, &payload); err != nil {
			b.logger.Warn("discarding malformed drop frame", "error", err)
			return
		}

		b.mu.Lock()
		fns := make([]func(string), 0, len(b.dropFns))
		for _, fn := range b.dropFns {
			fns = append(fns, fn)
		}
		b.mu.Unlock()

		for _, fn := range fns {
			fn(payload)
		}
	default:
		b.logger.Debug("ignoring unknown event topic", "topic", f.Topic)
	}
}
