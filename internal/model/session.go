package model

import (
	"net"
	"sync"
	"time"
)

// Session is the in-memory presence of a logged-in user. It exists only
// while the owning connection is live; at most one Session per userId.
type Session struct {
	mu sync.Mutex

	userID   uint32
	userName string

	externalIP   net.IP
	externalPort uint16

	channelServerIndex uint8
	channelIndex       uint8
	currentRoomID      uint16 // 0 = not in a room

	lastHeartbeat time.Time
}

// NewSession creates a session for a freshly authenticated user.
func NewSession(userID uint32, userName string, externalIP net.IP) *Session {
	return &Session{
		userID:        userID,
		userName:      userName,
		externalIP:    externalIP,
		lastHeartbeat: time.Now(),
	}
}

// UserID returns the immutable owner id.
func (s *Session) UserID() uint32 {
	return s.userID
}

// UserName returns the immutable account name.
func (s *Session) UserName() string {
	return s.userName
}

// ExternalNet returns the public address used for peer-to-peer setup.
func (s *Session) ExternalNet() (net.IP, uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.externalIP, s.externalPort
}

// SetExternalPort records the port observed by the holepunch endpoint.
func (s *Session) SetExternalPort(port uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalPort = port
}

// Channel returns the channel-server and channel indexes the user browses.
func (s *Session) Channel() (serverIndex, channelIndex uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelServerIndex, s.channelIndex
}

// SetChannel records the channel the user moved to.
func (s *Session) SetChannel(serverIndex, channelIndex uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelServerIndex = serverIndex
	s.channelIndex = channelIndex
}

// CurrentRoomID returns the room the user occupies, 0 when in no room.
func (s *Session) CurrentRoomID() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRoomID
}

// SetCurrentRoomID records room membership (0 clears it).
func (s *Session) SetCurrentRoomID(id uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoomID = id
}

// IsInRoom reports whether the user currently occupies a room.
func (s *Session) IsInRoom() bool {
	return s.CurrentRoomID() != 0
}

// Heartbeat refreshes the liveness timestamp.
func (s *Session) Heartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = time.Now()
}

// LastHeartbeat returns the time of the most recent heartbeat.
func (s *Session) LastHeartbeat() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHeartbeat
}
