package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBuffer   = 128

	// Frames larger than this are gzip-compressed for clients that advertise
	// support.
	gzipThreshold = 512
)

// Socket is the write side of one websocket connection. The concrete type in
// production is *websocket.Conn; tests inject fakes.
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live connection of one identity. A user with several open
// tabs has several Clients. Outbound writes go through a buffered channel so
// that fan-out never blocks on a slow client and the underlying socket sees
// a single writer.
type Client struct {
	ID           string
	UserID       uint
	Role         string
	SupportsGzip bool

	sock Socket
	send chan []byte
	once sync.Once
	done chan struct{}

	mu    sync.Mutex
	rooms map[uint]struct{}
}

func NewClient(userID uint, role string, sock Socket, supportsGzip bool) *Client {
	return &Client{
		ID:           uuid.NewString(),
		UserID:       userID,
		Role:         role,
		SupportsGzip: supportsGzip,
		sock:         sock,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		rooms:        make(map[uint]struct{}),
	}
}

// Start launches the write loop. Call exactly once per client.
func (c *Client) Start() {
	go c.writeLoop()
}

// Send enqueues a payload. A full buffer means the client cannot keep up;
// the connection is closed to keep backpressure bounded.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close()
		return errors.New("send buffer full")
	}
}

// Close terminates the connection and stops the write loop. Safe to call
// more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}

// Done is closed when the connection is finished.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			frameType := websocket.TextMessage
			if c.SupportsGzip && len(payload) > gzipThreshold {
				if compressed, err := compress(payload); err == nil && len(compressed) < len(payload) {
					payload = compressed
					frameType = websocket.BinaryMessage
				}
			}
			if err := c.sock.WriteMessage(frameType, payload); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Room bookkeeping; the hub reads the snapshot on disconnect to leave every
// subscribed room.

func (c *Client) trackRoom(conversationID uint) {
	c.mu.Lock()
	c.rooms[conversationID] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) untrackRoom(conversationID uint) {
	c.mu.Lock()
	delete(c.rooms, conversationID)
	c.mu.Unlock()
}

func (c *Client) roomSnapshot() []uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}
