package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds how long a slow subscriber can block a send.
	writeWait = 5 * time.Second

	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the wire format for one frame's state message.
type Envelope struct {
	Frame  uint32          `json:"frame"`
	SentAt time.Time       `json:"sentAt"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Broadcaster fans one message per sending frame out to all connected
// websocket subscribers. The run loop goroutine owns the client map;
// handlers and the host loop talk to it over channels.
type Broadcaster struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewBroadcaster returns a Broadcaster. Call Run in its own goroutine
// before serving connections.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run owns the client registry until Close is called.
func (b *Broadcaster) Run() {
	for {
		select {
		case c := <-b.register:
			b.clients[c] = true
			slog.Info("Subscriber connected", "total", len(b.clients))
		case c := <-b.unregister:
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.send)
				slog.Info("Subscriber disconnected", "total", len(b.clients))
			}
		case msg := <-b.broadcast:
			for c := range b.clients {
				select {
				case c.send <- msg:
				default:
					// subscriber is too far behind, drop it
					delete(b.clients, c)
					close(c.send)
					slog.Warn("Dropping slow subscriber")
				}
			}
		case <-b.done:
			for c := range b.clients {
				delete(b.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Close stops the run loop and disconnects all subscribers.
func (b *Broadcaster) Close() {
	close(b.done)
}

// BroadcastFrame queues one state message for every subscriber. The
// host loop calls this only on frames where the send cadence fires.
func (b *Broadcaster) BroadcastFrame(frame uint32, data []byte) error {
	msg, err := json.Marshal(Envelope{
		Frame:  frame,
		SentAt: time.Now().UTC(),
		Data:   data,
	})
	if err != nil {
		return err
	}

	select {
	case <-b.done:
		return ErrClosed
	default:
	}

	select {
	case b.broadcast <- msg:
		return nil
	case <-b.done:
		return ErrClosed
	}
}

// ServeHTTP upgrades the request and subscribes the connection to
// future frame messages.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case b.register <- c:
	case <-b.done:
		conn.Close()
		return
	}

	go c.writeLoop()
	go c.readLoop(b)
}

func (c *client) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop drains and discards inbound messages so pings and close
// frames are processed, and unsubscribes on error.
func (c *client) readLoop(b *Broadcaster) {
	defer func() {
		select {
		case b.unregister <- c:
		case <-b.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
