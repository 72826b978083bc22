package ws

import (
	"log"
	"sync"

	"github.com/judemcastillo/social-media-clone/internal/models"
)

// Hub maps identities to their live connections and conversation rooms to
// the connections subscribed to them. It is constructed at process start and
// injected wherever events need delivering; it is never a source of truth
// for membership.
type Hub struct {
	mu         sync.RWMutex
	identities map[uint]*identity

	roomsMu sync.RWMutex
	rooms   map[uint]map[string]*Client
}

// identity carries its own lock so concurrent tabs of the same user never
// contend with unrelated identities.
type identity struct {
	mu    sync.Mutex
	conns map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		identities: make(map[uint]*identity),
		rooms:      make(map[uint]map[string]*Client),
	}
}

// Register adds a connection under its identity and starts its write loop.
// The presence:online event stays scoped to the identity's own channel.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	ident := h.identities[c.UserID]
	if ident == nil {
		ident = &identity{conns: make(map[string]*Client)}
		h.identities[c.UserID] = ident
	}
	h.mu.Unlock()

	ident.mu.Lock()
	ident.conns[c.ID] = c
	total := len(ident.conns)
	ident.mu.Unlock()

	c.Start()
	h.SendToUser(c.UserID, PresenceEvent(c.UserID, true))
	log.Printf("User %d connected (conn=%s, sessions=%d)", c.UserID, c.ID, total)
}

// Unregister removes the connection from every subscribed room and from its
// identity's connection set, dropping the identity entry when empty.
func (h *Hub) Unregister(c *Client) {
	for _, conversationID := range c.roomSnapshot() {
		h.LeaveRoom(conversationID, c)
	}

	h.mu.Lock()
	ident := h.identities[c.UserID]
	h.mu.Unlock()

	remaining := 0
	if ident != nil {
		ident.mu.Lock()
		delete(ident.conns, c.ID)
		remaining = len(ident.conns)
		ident.mu.Unlock()

		if remaining == 0 {
			h.mu.Lock()
			// Re-check under the hub lock; a reconnect may have won.
			ident.mu.Lock()
			if len(ident.conns) == 0 {
				delete(h.identities, c.UserID)
			}
			ident.mu.Unlock()
			h.mu.Unlock()
		}
	}

	c.Close()
	// Offline presence goes out for every disconnect, including the last
	// one. Delivery is scoped to the identity's own sessions, so the final
	// event reaches no one until a cross-user subscriber list exists.
	h.SendToUser(c.UserID, PresenceEvent(c.UserID, false))
	log.Printf("User %d disconnected (conn=%s, sessions=%d)", c.UserID, c.ID, remaining)
}

// JoinRoom subscribes the connection to a conversation room. Re-subscribing
// is a no-op.
func (h *Hub) JoinRoom(conversationID uint, c *Client) {
	h.roomsMu.Lock()
	room := h.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Client)
		h.rooms[conversationID] = room
	}
	room[c.ID] = c
	h.roomsMu.Unlock()
	c.trackRoom(conversationID)
}

// LeaveRoom removes the connection from the room, dropping empty rooms.
func (h *Hub) LeaveRoom(conversationID uint, c *Client) {
	h.roomsMu.Lock()
	if room := h.rooms[conversationID]; room != nil {
		delete(room, c.ID)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	h.roomsMu.Unlock()
	c.untrackRoom(conversationID)
}

// RemoveUserFromRoom kicks every connection of the user out of the room.
// Called when a member is removed or leaves, so the room path stops
// delivering to them immediately.
func (h *Hub) RemoveUserFromRoom(conversationID, userID uint) {
	h.roomsMu.Lock()
	room := h.rooms[conversationID]
	var kicked []*Client
	for _, c := range room {
		if c.UserID == userID {
			kicked = append(kicked, c)
		}
	}
	for _, c := range kicked {
		delete(room, c.ID)
	}
	if room != nil && len(room) == 0 {
		delete(h.rooms, conversationID)
	}
	h.roomsMu.Unlock()
	for _, c := range kicked {
		c.untrackRoom(conversationID)
	}
}

// SendToUser delivers a payload to every live connection of the identity.
// Returns the number of connections reached.
func (h *Hub) SendToUser(userID uint, payload []byte) int {
	h.mu.RLock()
	ident := h.identities[userID]
	h.mu.RUnlock()
	if ident == nil {
		return 0
	}

	ident.mu.Lock()
	conns := make([]*Client, 0, len(ident.conns))
	for _, c := range ident.conns {
		conns = append(conns, c)
	}
	ident.mu.Unlock()

	sent := 0
	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			log.Printf("Failed to send to user %d conn %s: %v", userID, c.ID, err)
			continue
		}
		sent++
	}
	return sent
}

// BroadcastRoom delivers a payload to every connection in the room except
// the excluded one (empty string excludes nothing).
func (h *Hub) BroadcastRoom(conversationID uint, payload []byte, exceptConnID string) int {
	h.roomsMu.RLock()
	room := h.rooms[conversationID]
	conns := make([]*Client, 0, len(room))
	for _, c := range room {
		if c.ID == exceptConnID {
			continue
		}
		conns = append(conns, c)
	}
	h.roomsMu.RUnlock()

	sent := 0
	for _, c := range conns {
		if err := c.Send(payload); err != nil {
			log.Printf("Failed to broadcast to conn %s in conversation %d: %v", c.ID, conversationID, err)
			continue
		}
		sent++
	}
	return sent
}

// BroadcastNewMessage fans one persisted message out over both delivery
// paths: the conversation room first, then every other live connection of
// each member. Deduplication is by connection id, so a session in the room
// never sees the event twice. One failed connection never stops the rest.
func (h *Hub) BroadcastNewMessage(conversationID uint, memberIDs []uint, msg models.MessageResponse) int {
	payload := NewMessageEvent(msg)

	h.roomsMu.RLock()
	room := h.rooms[conversationID]
	inRoom := make(map[string]*Client, len(room))
	for id, c := range room {
		inRoom[id] = c
	}
	h.roomsMu.RUnlock()

	sent := 0
	for _, c := range inRoom {
		if err := c.Send(payload); err != nil {
			log.Printf("Room delivery failed for conn %s: %v", c.ID, err)
			continue
		}
		sent++
	}

	for _, userID := range memberIDs {
		h.mu.RLock()
		ident := h.identities[userID]
		h.mu.RUnlock()
		if ident == nil {
			continue
		}
		ident.mu.Lock()
		conns := make([]*Client, 0, len(ident.conns))
		for _, c := range ident.conns {
			if _, already := inRoom[c.ID]; already {
				continue
			}
			conns = append(conns, c)
		}
		ident.mu.Unlock()
		for _, c := range conns {
			if err := c.Send(payload); err != nil {
				log.Printf("Member delivery failed for user %d conn %s: %v", userID, c.ID, err)
				continue
			}
			sent++
		}
	}
	return sent
}

// IsOnline reports whether the identity has any live connection.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identities[userID] != nil
}

// ConnectionCount returns the number of live connections across identities.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, ident := range h.identities {
		ident.mu.Lock()
		total += len(ident.conns)
		ident.mu.Unlock()
	}
	return total
}

// Shutdown closes every connection. Used on process teardown.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	idents := make([]*identity, 0, len(h.identities))
	for _, ident := range h.identities {
		idents = append(idents, ident)
	}
	h.identities = make(map[uint]*identity)
	h.mu.Unlock()

	for _, ident := range idents {
		ident.mu.Lock()
		for _, c := range ident.conns {
			c.Close()
		}
		ident.mu.Unlock()
	}
}
