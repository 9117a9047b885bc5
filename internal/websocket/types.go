package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"codeberg.org/pairpad/server/internal/store"
)

// inbound event types (closed vocabulary)
const (
	// binds the connection to a session
	TypeJoinSession = "join-session"

	// releases the connection's binding
	TypeLeaveSession = "leave-session"

	// replaces the shared code buffer
	TypeCodeChange = "code-change"

	// changes the session language
	TypeLanguageChange = "language-change"

	// reports the sender's cursor position
	TypeCursorMove = "cursor-move"

	// announces a code run starting in the sender's sandbox
	TypeExecutionStarted = "execution-started"

	// relays the outcome of a code run
	TypeExecutionResult = "execution-result"

	// keep-alive from clients
	TypePing = "ping"
)

// outbound event types
const (
	// is sent to the joining connection only
	TypeSessionJoined = "session-joined"

	// is sent to the room when a user joins
	TypeUserJoined = "user-joined"

	// is sent to the remaining room when a user leaves
	TypeUserLeft = "user-left"

	// carries the new code buffer to everyone but the editor
	TypeCodeUpdate = "code-update"

	// carries the new language to the whole room, sender included
	TypeLanguageUpdate = "language-update"

	// carries a cursor position to everyone but the mover
	TypeCursorUpdate = "cursor-update"

	// relays an execution result to the whole room
	TypeExecutionUpdate = "execution-update"

	// is sent to a single connection when its event failed
	TypeError = "error"

	// is sent in response to ping
	TypePong = "pong"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512 KB

	// maximum code buffer size
	maxCodeSize = 100 * 1024 // 100 KB

	// maximum code updates per second per connection
	codeUpdatesPerSecond = 10

	// consecutive store-mutation failures before a connection is force-left
	maxMutationFailures = 3

	// outbound buffer per connection
	sendBufferSize = 256
)

// errors
var (
	ErrConnectionClosed = errors.New("connection closed")
)

// Message is the websocket envelope. Sequence is stamped per session on
// broadcasts so clients can order them; it is zero on direct replies.
type Message struct {
	Type     string          `json:"type"`
	Sequence uint64          `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// creates a message with a marshaled payload
func NewMessage(msgType string, payload any) (*Message, error) {
	msg := &Message{Type: msgType}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}

	return msg, nil
}

// decodes the message payload into v
func (m *Message) UnmarshalPayload(v any) error {
	if len(m.Payload) == 0 {
		return errors.New("empty payload")
	}

	return json.Unmarshal(m.Payload, v)
}

// pairs an inbound message with the connection it arrived on
type inboundEvent struct {
	client *Client
	msg    *Message
}

// CursorPosition is a line/column pair in the shared buffer.
type CursorPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// inbound payloads

type JoinSessionPayload struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
}

type CodeChangePayload struct {
	Code string `json:"code"`
}

type LanguageChangePayload struct {
	Language string `json:"language"`
}

type CursorMovePayload struct {
	Position CursorPosition `json:"position"`
}

type ExecutionStartedPayload struct {
	SessionID string `json:"sessionId"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

// Result is relayed opaquely; the coordinator never interprets it.
type ExecutionResultPayload struct {
	SessionID string          `json:"sessionId"`
	Result    json.RawMessage `json:"result"`
}

// outbound payloads

type SessionJoinedPayload struct {
	UserID   string              `json:"userId"`
	Username string              `json:"username"`
	Users    []store.Participant `json:"users"`
}

type UserJoinedPayload struct {
	User  store.Participant   `json:"user"`
	Users []store.Participant `json:"users"`
}

type UserLeftPayload struct {
	UserID   string              `json:"userId"`
	Username string              `json:"username"`
	Users    []store.Participant `json:"users"`
}

type CodeUpdatePayload struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
}

type LanguageUpdatePayload struct {
	Language store.Language `json:"language"`
	UserID   string         `json:"userId"`
}

type CursorUpdatePayload struct {
	UserID   string         `json:"userId"`
	Position CursorPosition `json:"position"`
}

type ExecutionStartedBroadcast struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Code      string `json:"code"`
	Language  string `json:"language"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds, server-stamped
}

type ExecutionUpdatePayload struct {
	UserID    string          `json:"userId"`
	Username  string          `json:"username"`
	Result    json.RawMessage `json:"result"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds, server-stamped
}

type ErrorPayload struct {
	Message string `json:"message"`
}
