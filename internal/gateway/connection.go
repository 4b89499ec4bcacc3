package gateway

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	errConnectionClosed = errors.New("connection closed")
	errSendBufferFull   = errors.New("send buffer full")
)

// Connection is one live WebSocket channel to a client session. A user may
// own many connections (tabs, devices); a connection, once registered,
// belongs to exactly one user.
type Connection struct {
	id        string
	ws        *websocket.Conn
	logger    *slog.Logger
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	writeWait time.Duration

	mu     sync.Mutex
	userID string
	alive  bool
}

func newConnection(ws *websocket.Conn, sendBuffer int, writeWait time.Duration, logger *slog.Logger) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	return &Connection{
		id:        uuid.NewString(),
		ws:        ws,
		logger:    logger,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
		writeWait: writeWait,
		alive:     true,
	}
}

// ID returns the connection's unique identifier.
func (c *Connection) ID() string { return c.id }

// UserID returns the bound user identity, or "" before registration.
func (c *Connection) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// bindUser binds the connection to a user. Rebinding to a different user
// is refused; binding the same user again is a no-op.
func (c *Connection) bindUser(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == "" {
		c.userID = userID
		return true
	}
	return c.userID == userID
}

// Alive reports the heartbeat flag set by the last transport pong.
func (c *Connection) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *Connection) setAlive(alive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = alive
}

// probe sends a transport-level ping. WriteControl is safe to call
// concurrently with the write loop.
func (c *Connection) probe() error {
	if c.ws == nil {
		return errConnectionClosed
	}
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

// enqueue queues one encoded frame for delivery. A closed connection or a
// full buffer drops the frame for this connection only; neither condition
// may block the caller.
func (c *Connection) enqueue(data []byte) error {
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errConnectionClosed
	default:
		return errSendBufferFull
	}
}

// sendFrame encodes and queues a single frame.
func (c *Connection) sendFrame(frame serverFrame) error {
	data, err := encodeFrame(frame)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

// writeLoop owns all data writes on the socket. Frames queued on a single
// connection go out in queue order.
func (c *Connection) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait)) //nolint:errcheck
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				if c.logger != nil {
					c.logger.Debug("write failed, closing connection", "conn", c.id, "error", err)
				}
				c.Close()
				return
			}
		}
	}
}

// Close tears the connection down exactly once. A close frame is sent
// best-effort so well-behaved clients see a clean shutdown.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			deadline := time.Now().Add(c.writeWait)
			_ = c.ws.WriteControl(websocket.CloseMessage, //nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = c.ws.Close() //nolint:errcheck
		}
	})
}
