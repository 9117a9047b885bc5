package websocket

import (
	"sync"

	"github.com/samber/lo"

	"codeberg.org/pairpad/server/internal/ids"
	"codeberg.org/pairpad/server/internal/logger"
	"codeberg.org/pairpad/server/internal/store"
)

// Hub routes events between websocket connections and the session store. It
// owns room membership explicitly: a room is the set of connections currently
// bound to a session, and broadcast targets are computed from that set alone.
//
// Register, Unregister and Inbound are all drained by the single Run loop, so
// events from one connection are handled in the order they arrived and never
// interleave with another handler.
type Hub struct {
	sessions *store.Store

	// room membership by session ID and client ID
	rooms map[string]map[string]*Client

	// all live connections, bound or not
	conns map[string]*Client

	// register requests from new connections
	Register chan *Client

	// unregister requests on disconnect
	Unregister chan *Client

	// decoded events from connection read pumps
	Inbound chan *inboundEvent

	// sequence numbers per session for broadcast ordering
	roomSequences map[string]uint64

	// produces participant ids; swappable in tests
	newParticipantID func() (string, error)

	mu           sync.RWMutex
	shutdown     chan struct{}
	shutdownOnce sync.Once
}

func NewHub(sessions *store.Store) *Hub {
	return &Hub{
		sessions:         sessions,
		rooms:            make(map[string]map[string]*Client),
		conns:            make(map[string]*Client),
		Register:         make(chan *Client),
		Unregister:       make(chan *Client),
		Inbound:          make(chan *inboundEvent, 256),
		roomSequences:    make(map[string]uint64),
		newParticipantID: ids.NewParticipantID,
		shutdown:         make(chan struct{}),
	}
}

// starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.Inbound:
			h.dispatch(event.client, event.msg)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// Shutdown stops the Run loop and closes every connection. Safe to call from
// any goroutine, more than once, and before Run has started.
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

// hands a disconnecting client to the Run loop. Returns immediately once the
// hub has shut down so read pumps never block on teardown.
func (h *Hub) notifyDisconnect(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.shutdown:
	}
}

// adds a new, still Unbound connection
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.conns[client.ID] = client
	h.mu.Unlock()

	logger.Info("client connected", "client_id", client.ID)
}

// runs the leaving procedure and drops the connection
func (h *Hub) unregisterClient(client *Client) {
	h.mu.RLock()
	_, exists := h.conns[client.ID]
	h.mu.RUnlock()

	if !exists {
		return
	}

	// transport disconnect and explicit leave share one procedure
	h.leaveSession(client)

	h.mu.Lock()
	delete(h.conns, client.ID)
	h.mu.Unlock()

	client.Close()

	logger.Info("client disconnected", "client_id", client.ID)
}

// removes the client's participant from the store, leaves the room and
// notifies the remaining members. No-op for Unbound connections.
func (h *Hub) leaveSession(client *Client) {
	sessionID, participantID, username, bound := client.Binding()
	if !bound {
		return
	}

	h.sessions.RemoveParticipant(sessionID, participantID)
	h.leaveRoom(sessionID, client)
	client.Unbind()

	msg, err := NewMessage(TypeUserLeft, UserLeftPayload{
		UserID:   participantID,
		Username: username,
		Users:    h.sessions.Participants(sessionID),
	})
	if err == nil {
		h.broadcastToRoom(sessionID, msg, client.ID)
	}

	logger.Info("user left session",
		"client_id", client.ID,
		"participant_id", participantID,
		"username", username,
		"session_id", sessionID,
	)
}

// room operations: membership is hub-owned state, nothing else tracks it

func (h *Hub) joinRoom(sessionID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[string]*Client)
	}

	h.rooms[sessionID][client.ID] = client
}

func (h *Hub) leaveRoom(sessionID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.rooms[sessionID]
	if !exists {
		return
	}

	delete(room, client.ID)

	if len(room) == 0 {
		delete(h.rooms, sessionID)
		delete(h.roomSequences, sessionID)
	}
}

// sends a message to every room member except excludeClientID; pass "" to
// include the whole room. Deliveries to closed connections are dropped.
func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.rooms[sessionID]
	if !exists {
		return
	}

	h.roomSequences[sessionID]++
	msg.Sequence = h.roomSequences[sessionID]

	for clientID, client := range room {
		if clientID == excludeClientID {
			continue
		}

		if err := client.Send(msg); err != nil {
			logger.Debug("dropped broadcast to client",
				"client_id", clientID,
				"session_id", sessionID,
				"error", err,
			)
		}
	}
}

// returns the ids of connections currently in a session's room
func (h *Hub) RoomClientIDs(sessionID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.Keys(h.rooms[sessionID])
}

// returns the number of connections in a session's room
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[sessionID])
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("closing all websocket connections", "count", len(h.conns))

	for _, client := range h.conns {
		client.Close()
	}

	h.rooms = make(map[string]map[string]*Client)
	h.conns = make(map[string]*Client)
	h.roomSequences = make(map[string]uint64)
}
