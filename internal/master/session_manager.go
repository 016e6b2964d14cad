package master

import (
	"log/slog"
	"sync"

	"github.com/nslott/masterserver/internal/model"
)

// SessionManager is the process-wide userId → Session registry. It enforces
// the single-session rule: a second successful login for a userId closes
// the previous owner's connection.
type SessionManager struct {
	mu      sync.RWMutex
	entries map[uint32]*sessionEntry
}

type sessionEntry struct {
	session *model.Session
	conn    *Connection
}

// NewSessionManager creates an empty registry.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		entries: make(map[uint32]*sessionEntry),
	}
}

// Store registers a session bound to conn. Any previously open connection
// for the same userId is closed asynchronously; its teardown will not evict
// the new session.
func (sm *SessionManager) Store(session *model.Session, conn *Connection) {
	sm.mu.Lock()
	prev := sm.entries[session.UserID()]
	sm.entries[session.UserID()] = &sessionEntry{session: session, conn: conn}
	sm.mu.Unlock()

	if prev != nil {
		slog.Warn("duplicate login, closing previous connection",
			"userId", session.UserID(), "prevConn", prev.conn.ID())
		prev.conn.CloseAsync()
	}
}

// Remove drops the session for userID, but only if it is still owned by
// conn — a stale connection tearing down must not evict its successor.
func (sm *SessionManager) Remove(userID uint32, conn *Connection) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	entry, ok := sm.entries[userID]
	if !ok || entry.conn != conn {
		return
	}
	delete(sm.entries, userID)
}

// Get returns the session for userID.
func (sm *SessionManager) Get(userID uint32) (*model.Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entry, ok := sm.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

// GetConnection returns the connection owning userID's session.
func (sm *SessionManager) GetConnection(userID uint32) (*Connection, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	entry, ok := sm.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.conn, true
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.entries)
}
