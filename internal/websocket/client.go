package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/pairpad/server/internal/logger"
)

// Client is one live websocket connection. It starts Unbound; a successful
// join-session binds it to a (session, participant) pair and leave/disconnect
// unbinds it. The binding is the only connection-to-session state in the
// system; the store remains the single owner of participant records.
type Client struct {
	// unique identifier for this connection
	ID string

	conn *websocket.Conn
	hub  *Hub

	// buffered channel of outbound messages
	send chan []byte

	mu     sync.RWMutex
	closed bool

	// binding, empty while Unbound (guarded by mu)
	sessionID     string
	participantID string
	username      string

	// consecutive store-mutation failures (eviction race tracking)
	mutationFailures int

	// limits code-change events per connection
	codeLimiter *rate.Limiter
}

// creates a new websocket client connection
func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		hub:         hub,
		send:        make(chan []byte, sendBufferSize),
		codeLimiter: rate.NewLimiter(rate.Limit(codeUpdatesPerSecond), codeUpdatesPerSecond),
	}
}

// binds the connection to a session and participant
func (c *Client) Bind(sessionID, participantID, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionID = sessionID
	c.participantID = participantID
	c.username = username
	c.mutationFailures = 0
}

// clears the connection's binding
func (c *Client) Unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionID = ""
	c.participantID = ""
	c.username = ""
	c.mutationFailures = 0
}

// returns the current binding; bound is false while Unbound
func (c *Client) Binding() (sessionID, participantID, username string, bound bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sessionID, c.participantID, c.username, c.sessionID != ""
}

// records a failed store mutation and returns the consecutive failure count
func (c *Client) recordMutationFailure() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mutationFailures++
	return c.mutationFailures
}

// resets the consecutive failure count after a successful mutation
func (c *Client) resetMutationFailures() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mutationFailures = 0
}

// reports whether another code update is allowed right now
func (c *Client) allowCodeUpdate() bool {
	return c.codeLimiter.Allow()
}

// reads messages from the websocket connection and forwards them to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.hub.notifyDisconnect(c)
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"error", err,
				)
			}

			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			logger.Debug("failed to unmarshal message",
				"client_id", c.ID,
				"error", err,
			)

			c.SendError("Invalid message format")
			continue
		}

		// forward to the hub; events from one connection stay in order
		c.hub.Inbound <- &inboundEvent{client: c, msg: &msg}
	}
}

// writes messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			w.Write(message) //nolint:errcheck,gosec // G104: websocket write

			// add queued messages to the current websocket message
			n := len(c.send)

			for range n {
				w.Write([]byte{'\n'}) //nolint:errcheck,gosec // G104: websocket write
				w.Write(<-c.send)     //nolint:errcheck,gosec // G104: websocket write
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// sends a message to the client
func (c *Client) Send(msg *Message) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	c.mu.RLock()

	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	c.mu.RUnlock()

	messageBytes, marshalErr := json.Marshal(msg)
	if marshalErr != nil {
		return marshalErr
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		// channel is full; slow consumer, drop the connection
		c.Close()
		return ErrConnectionClosed
	}
}

// sends an error event to this connection only
func (c *Client) SendError(message string) {
	errorMsg, err := NewMessage(TypeError, ErrorPayload{Message: message})
	if err != nil {
		logger.ErrorErr(err, "failed to create error message",
			"client_id", c.ID,
		)
		return
	}

	c.Send(errorMsg) //nolint:errcheck,gosec // G104: best effort error notification
}

// closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// checks if the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}
