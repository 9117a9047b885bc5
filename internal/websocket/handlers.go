package websocket

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"codeberg.org/pairpad/server/internal/logger"
	"codeberg.org/pairpad/server/internal/store"
)

// dispatch routes one decoded event to its handler. The vocabulary is closed:
// every inbound type has a case here and anything else is rejected back to
// the sender. All validation failures are reported to the sender only and
// never terminate the connection.
func (h *Hub) dispatch(client *Client, msg *Message) {
	switch msg.Type {
	case TypeJoinSession:
		h.handleJoinSession(client, msg)

	case TypeLeaveSession:
		h.leaveSession(client)

	case TypeCodeChange:
		h.handleCodeChange(client, msg)

	case TypeLanguageChange:
		h.handleLanguageChange(client, msg)

	case TypeCursorMove:
		h.handleCursorMove(client, msg)

	case TypeExecutionStarted:
		h.handleExecutionStarted(client, msg)

	case TypeExecutionResult:
		h.handleExecutionResult(client, msg)

	case TypePing:
		h.handlePing(client)

	default:
		logger.Warn("unhandled message type received",
			"message_type", msg.Type,
			"client_id", client.ID,
		)

		client.SendError(fmt.Sprintf("Unsupported event type: %s", msg.Type))
	}
}

// binds the connection to a session. A connection that is already bound
// implicitly leaves its current session first.
func (h *Hub) handleJoinSession(client *Client, msg *Message) {
	var payload JoinSessionPayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		client.SendError("Invalid message payload")
		return
	}

	if payload.SessionID == "" || payload.Username == "" {
		client.SendError("Session id and username are required")
		return
	}

	if _, exists := h.sessions.Get(payload.SessionID); !exists {
		client.SendError("Session not found")
		return
	}

	// rejoin policy: leave the old session before joining the new one
	if _, _, _, bound := client.Binding(); bound {
		h.leaveSession(client)
	}

	username := dedupeUsername(payload.Username, h.sessions.Participants(payload.SessionID))

	participantID, err := h.newParticipantID()
	if err != nil {
		logger.ErrorErr(err, "failed to generate participant id",
			"client_id", client.ID,
			"session_id", payload.SessionID,
		)

		client.SendError("Failed to join session")
		return
	}

	participant := store.Participant{
		ID:       participantID,
		Username: username,
		ClientID: client.ID,
	}

	if !h.sessions.AddParticipant(payload.SessionID, participant) {
		// session evicted between lookup and insert
		client.SendError("Session not found")
		return
	}

	client.Bind(payload.SessionID, participantID, username)
	h.joinRoom(payload.SessionID, client)

	users := h.sessions.Participants(payload.SessionID)

	reply, err := NewMessage(TypeSessionJoined, SessionJoinedPayload{
		UserID:   participantID,
		Username: username,
		Users:    users,
	})
	if err == nil {
		if sendErr := client.Send(reply); sendErr != nil {
			logger.ErrorErr(sendErr, "failed to send session-joined",
				"client_id", client.ID,
				"session_id", payload.SessionID,
			)
		}
	}

	joined, err := NewMessage(TypeUserJoined, UserJoinedPayload{
		User:  participant,
		Users: users,
	})
	if err == nil {
		h.broadcastToRoom(payload.SessionID, joined, client.ID)
	}

	logger.Info("user joined session",
		"client_id", client.ID,
		"participant_id", participantID,
		"username", username,
		"session_id", payload.SessionID,
	)
}

// replaces the shared buffer and fans out to everyone but the editor
func (h *Hub) handleCodeChange(client *Client, msg *Message) {
	sessionID, participantID, _, bound := client.Binding()
	if !bound {
		client.SendError("Not in a session")
		return
	}

	var payload CodeChangePayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		client.SendError("Invalid message payload")
		return
	}

	if len(payload.Code) > maxCodeSize {
		client.SendError("Code exceeds maximum size")
		return
	}

	if !client.allowCodeUpdate() {
		client.SendError("Too many code updates")
		return
	}

	if !h.sessions.UpdateCode(sessionID, payload.Code) {
		client.SendError("Failed to update code")
		h.handleMutationFailure(client, sessionID)
		return
	}

	client.resetMutationFailures()

	// echo suppression: the sender already has the authoritative text
	update, err := NewMessage(TypeCodeUpdate, CodeUpdatePayload{
		Code:   payload.Code,
		UserID: participantID,
	})
	if err == nil {
		h.broadcastToRoom(sessionID, update, client.ID)
	}
}

// changes the session language and fans out to the whole room, sender
// included, so every editor re-renders from the confirmed value
func (h *Hub) handleLanguageChange(client *Client, msg *Message) {
	sessionID, participantID, _, bound := client.Binding()
	if !bound {
		client.SendError("Not in a session")
		return
	}

	var payload LanguageChangePayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		client.SendError("Invalid message payload")
		return
	}

	language, ok := store.ParseLanguage(payload.Language)
	if !ok {
		client.SendError("Invalid language")
		return
	}

	if !h.sessions.UpdateLanguage(sessionID, language) {
		client.SendError("Failed to update language")
		h.handleMutationFailure(client, sessionID)
		return
	}

	client.resetMutationFailures()

	update, err := NewMessage(TypeLanguageUpdate, LanguageUpdatePayload{
		Language: language,
		UserID:   participantID,
	})
	if err == nil {
		h.broadcastToRoom(sessionID, update, "")
	}
}

// relays a cursor position to everyone but the mover. Best-effort: an
// unbound or malformed cursor-move is dropped without an error reply.
func (h *Hub) handleCursorMove(client *Client, msg *Message) {
	sessionID, participantID, _, bound := client.Binding()
	if !bound {
		return
	}

	var payload CursorMovePayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		return
	}

	update, err := NewMessage(TypeCursorUpdate, CursorUpdatePayload{
		UserID:   participantID,
		Position: payload.Position,
	})
	if err == nil {
		h.broadcastToRoom(sessionID, update, client.ID)
	}
}

// rebroadcasts an execution announcement to the whole room, enriched with
// the sender's identity and a server timestamp
func (h *Hub) handleExecutionStarted(client *Client, msg *Message) {
	var payload ExecutionStartedPayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		client.SendError("Invalid message payload")
		return
	}

	participant, ok := h.resolveExecutionSender(client, payload.SessionID)
	if !ok {
		return
	}

	broadcast, err := NewMessage(TypeExecutionStarted, ExecutionStartedBroadcast{
		UserID:    participant.ID,
		Username:  participant.Username,
		Code:      payload.Code,
		Language:  payload.Language,
		Timestamp: time.Now().UnixMilli(),
	})
	if err == nil {
		h.broadcastToRoom(payload.SessionID, broadcast, "")
	}
}

// relays an opaque execution result to the whole room
func (h *Hub) handleExecutionResult(client *Client, msg *Message) {
	var payload ExecutionResultPayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		client.SendError("Invalid message payload")
		return
	}

	participant, ok := h.resolveExecutionSender(client, payload.SessionID)
	if !ok {
		return
	}

	broadcast, err := NewMessage(TypeExecutionUpdate, ExecutionUpdatePayload{
		UserID:    participant.ID,
		Username:  participant.Username,
		Result:    payload.Result,
		Timestamp: time.Now().UnixMilli(),
	})
	if err == nil {
		h.broadcastToRoom(payload.SessionID, broadcast, "")
	}
}

// validates that the declared session matches the connection's binding and
// that the sender's participant still resolves in the store
func (h *Hub) resolveExecutionSender(client *Client, declaredSessionID string) (store.Participant, bool) {
	sessionID, participantID, _, bound := client.Binding()
	if !bound || sessionID != declaredSessionID {
		client.SendError("Not in session")
		return store.Participant{}, false
	}

	participant, ok := h.sessions.Participant(sessionID, participantID)
	if !ok {
		client.SendError("User not found")
		return store.Participant{}, false
	}

	return participant, true
}

func (h *Hub) handlePing(client *Client) {
	pong, err := NewMessage(TypePong, nil)
	if err != nil {
		return
	}

	client.Send(pong) //nolint:errcheck,gosec // best-effort pong
}

// tracks the eviction race: a connection whose session vanished underneath
// it is force-left after repeated failures rather than kept bound forever
func (h *Hub) handleMutationFailure(client *Client, sessionID string) {
	failures := client.recordMutationFailure()
	if failures < maxMutationFailures {
		return
	}

	logger.Warn("forcing client out of vanished session",
		"client_id", client.ID,
		"session_id", sessionID,
		"failures", failures,
	)

	h.leaveSession(client)
}

// computes a collision-free display name by appending -2, -3, ... until the
// name is unused in the session; the smallest free suffix wins
func dedupeUsername(username string, existing []store.Participant) string {
	taken := lo.Map(existing, func(p store.Participant, _ int) string {
		return p.Username
	})

	if !lo.Contains(taken, username) {
		return username
	}

	counter := 2
	for lo.Contains(taken, fmt.Sprintf("%s-%d", username, counter)) {
		counter++
	}

	return fmt.Sprintf("%s-%d", username, counter)
}
