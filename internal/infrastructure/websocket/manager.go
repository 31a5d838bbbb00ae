package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gamebit/pkg/logger"
)

const typingTTL = 3 * time.Second

// PresenceStore persists user online state. Implemented by the user
// repository.
type PresenceStore interface {
	SetPresence(ctx context.Context, userID string, online bool) error
}

// Manager tracks live connections, chat room membership and typing
// state. A user is online while at least one of their connections is
// registered.
type Manager struct {
	mu          sync.RWMutex
	userClients map[string]map[*Client]bool
	roomClients map[string]map[*Client]bool
	clientRooms map[*Client]map[string]bool
	typing      map[string]map[string]time.Time

	presence PresenceStore
}

func NewManager(presence PresenceStore) *Manager {
	return &Manager{
		userClients: make(map[string]map[*Client]bool),
		roomClients: make(map[string]map[*Client]bool),
		clientRooms: make(map[*Client]map[string]bool),
		typing:      make(map[string]map[string]time.Time),
		presence:    presence,
	}
}

// Start runs the typing-state sweeper until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweepTyping()
			}
		}
	}()
}

// Register attaches a new connection for userID. The first connection
// flips the user online.
func (m *Manager) Register(ctx context.Context, userID string, conn *websocket.Conn) *Client {
	client := newClient(userID, conn, m)

	m.mu.Lock()
	first := len(m.userClients[userID]) == 0
	if m.userClients[userID] == nil {
		m.userClients[userID] = make(map[*Client]bool)
	}
	m.userClients[userID][client] = true
	m.clientRooms[client] = make(map[string]bool)
	m.mu.Unlock()

	if first {
		if err := m.presence.SetPresence(ctx, userID, true); err != nil {
			logger.Error("Failed to set presence online for %s: %v", userID, err)
		}
	}

	logger.Info("Websocket client %s connected for user %s", client.ID, userID)
	return client
}

// Unregister detaches a connection. The last connection flips the user
// offline and records last seen.
func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	if _, ok := m.clientRooms[client]; !ok {
		m.mu.Unlock()
		return
	}

	for chatID := range m.clientRooms[client] {
		delete(m.roomClients[chatID], client)
		if len(m.roomClients[chatID]) == 0 {
			delete(m.roomClients, chatID)
		}
	}
	delete(m.clientRooms, client)

	delete(m.userClients[client.UserID], client)
	last := len(m.userClients[client.UserID]) == 0
	if last {
		delete(m.userClients, client.UserID)
	}
	m.mu.Unlock()

	client.closeSend()

	if last {
		if err := m.presence.SetPresence(context.Background(), client.UserID, false); err != nil {
			logger.Error("Failed to set presence offline for %s: %v", client.UserID, err)
		}
	}

	logger.Info("Websocket client %s disconnected for user %s", client.ID, client.UserID)
}

func (m *Manager) JoinRoom(client *Client, chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.roomClients[chatID] == nil {
		m.roomClients[chatID] = make(map[*Client]bool)
	}
	m.roomClients[chatID][client] = true
	if m.clientRooms[client] != nil {
		m.clientRooms[client][chatID] = true
	}
}

func (m *Manager) LeaveRoom(client *Client, chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.roomClients[chatID], client)
	if len(m.roomClients[chatID]) == 0 {
		delete(m.roomClients, chatID)
	}
	if m.clientRooms[client] != nil {
		delete(m.clientRooms[client], chatID)
	}
}

// BroadcastToRoom fans a payload out to every connection in the room.
// exceptConnID suppresses the echo back to the originating connection.
func (m *Manager) BroadcastToRoom(chatID string, payload []byte, exceptConnID string) {
	if payload == nil {
		return
	}

	m.mu.RLock()
	clients := make([]*Client, 0, len(m.roomClients[chatID]))
	for client := range m.roomClients[chatID] {
		if client.ID == exceptConnID {
			continue
		}
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	for _, client := range clients {
		client.Send(payload)
	}
}

// SendToUser delivers a payload to every live connection of a user.
func (m *Manager) SendToUser(userID string, payload []byte) {
	if payload == nil {
		return
	}

	m.mu.RLock()
	clients := make([]*Client, 0, len(m.userClients[userID]))
	for client := range m.userClients[userID] {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	for _, client := range clients {
		client.Send(payload)
	}
}

func (m *Manager) IsOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.userClients[userID]) > 0
}

// SetTyping records or clears a typing indicator and returns its
// expiry. Typing state lives only in memory.
func (m *Manager) SetTyping(chatID, userID string, isTyping bool) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !isTyping {
		delete(m.typing[chatID], userID)
		if len(m.typing[chatID]) == 0 {
			delete(m.typing, chatID)
		}
		return time.Time{}
	}

	expiry := time.Now().Add(typingTTL)
	if m.typing[chatID] == nil {
		m.typing[chatID] = make(map[string]time.Time)
	}
	m.typing[chatID][userID] = expiry
	return expiry
}

// TypingUsers returns the users currently typing in a chat.
func (m *Manager) TypingUsers(chatID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var users []string
	for userID, expiry := range m.typing[chatID] {
		if expiry.After(now) {
			users = append(users, userID)
		}
	}
	return users
}

func (m *Manager) sweepTyping() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for chatID, users := range m.typing {
		for userID, expiry := range users {
			if !expiry.After(now) {
				delete(users, userID)
			}
		}
		if len(users) == 0 {
			delete(m.typing, chatID)
		}
	}
}
