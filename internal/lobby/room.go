package lobby

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/nslott/masterserver/internal/master/serverpackets"
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/protocol"
)

const (
	// MaxPlayersWithBots is the slot cap when bots are enabled.
	MaxPlayersWithBots = 16
	// MaxPlayersDefault is the slot cap for human-only rooms.
	MaxPlayersDefault = 32

	// CountdownStart is the first tick of the pre-match countdown.
	CountdownStart = 10
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrNotHost      = errors.New("requester is not the room host")
	ErrNotMember    = errors.New("user is not a room member")
	ErrNotAllReady  = errors.New("not all members are ready")
	ErrInGame       = errors.New("room is in game")
	ErrNotInGame    = errors.New("room is not in game")
	ErrBadCountdown = errors.New("countdown tick out of order")
)

// Member is one user inside a room, in join order.
type Member struct {
	UserID       uint32
	UserName     string
	Team         model.Team
	Status       model.Readiness
	ExternalIP   net.IP
	ExternalPort uint16
	Conn         Conn
}

// Room is one lobby room: ordered membership, host, settings and the
// ready/countdown/in-game state machine. All methods are safe for
// concurrent use; mutation and broadcast are serialized on the internal
// mutex. The onEmpty callback runs outside the lock.
type Room struct {
	mu sync.Mutex

	id         uint16
	name       string
	settings   model.RoomSettings
	maxPlayers uint8

	hostUserID uint32
	members    []*Member

	inGame          bool
	countdownActive bool
	countdown       uint8

	onEmpty func(*Room)
}

// NewRoom creates a room with host as its first member and sends the full
// room state to the host. An empty name defaults to "Room #<id>".
func NewRoom(id uint16, name string, settings model.RoomSettings, host *Member, onEmpty func(*Room)) *Room {
	if name == "" {
		name = fmt.Sprintf("Room #%d", id)
	}

	r := &Room{
		id:         id,
		name:       name,
		settings:   settings,
		maxPlayers: maxPlayersFor(settings),
		hostUserID: host.UserID,
		members:    []*Member{host},
		countdown:  CountdownStart,
		onEmpty:    onEmpty,
	}

	r.sendTo(host, protocol.PacketTypeRoom, r.fullStateLocked())
	return r
}

func maxPlayersFor(s model.RoomSettings) uint8 {
	if s.EnableBots != 0 {
		return MaxPlayersWithBots
	}
	return MaxPlayersDefault
}

// ID returns the immutable room id.
func (r *Room) ID() uint16 {
	return r.id
}

// Name returns the current room name.
func (r *Room) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// HostUserID returns the current host.
func (r *Room) HostUserID() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostUserID
}

// Settings returns a copy of the current settings.
func (r *Room) Settings() model.RoomSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// MaxPlayers returns the slot cap.
func (r *Room) MaxPlayers() uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxPlayers
}

// InGame reports whether a match is running.
func (r *Room) InGame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inGame
}

// PlayerCount returns the current member count.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// HasFreeSlots reports whether another member fits.
func (r *Room) HasFreeSlots() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) < int(r.maxPlayers)
}

// Members returns a snapshot copy of the member list, safe to iterate
// without holding the room lock.
func (r *Room) Members() []*Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membersSnapshotLocked()
}

// HasMember reports whether userID is in the room.
func (r *Room) HasMember(userID uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberLocked(userID) != nil
}

// Host returns the host member, or nil for an empty room.
func (r *Room) Host() *Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memberLocked(r.hostUserID)
}

// ListEntry returns the browser-facing view of the room.
func (r *Room) ListEntry() serverpackets.RoomListEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return serverpackets.RoomListEntry{
		RoomID:     r.id,
		Name:       r.name,
		HostUserID: r.hostUserID,
		GameModeID: r.settings.GameModeID,
		MapID:      r.settings.MapID,
		Players:    uint8(len(r.members)),
		MaxPlayers: r.maxPlayers,
		InGame:     r.inGame,
	}
}

// AddUser appends a member, announces the join to prior members and sends
// the full room state to the joiner.
func (r *Room) AddUser(m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) >= int(r.maxPlayers) {
		return ErrRoomFull
	}

	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomPlayerJoin(wirePlayer(m)))
	r.members = append(r.members, m)
	r.sendTo(m, protocol.PacketTypeRoom, r.fullStateLocked())
	return nil
}

// RemoveUser drops a member. An emptied room fires onEmpty; otherwise a
// departed host is replaced by the longest-standing member (join order) and
// both the election and the departure are broadcast.
func (r *Room) RemoveUser(userID uint32) {
	r.mu.Lock()

	idx := -1
	for i, m := range r.members {
		if m.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return
	}

	r.members = append(r.members[:idx], r.members[idx+1:]...)

	if len(r.members) == 0 {
		onEmpty := r.onEmpty
		r.mu.Unlock()
		if onEmpty != nil {
			onEmpty(r)
		}
		return
	}

	if r.hostUserID == userID {
		r.hostUserID = r.members[0].UserID
		r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomSetHost(r.hostUserID))
	}
	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomPlayerLeave(userID))
	r.mu.Unlock()
}

// ToggleReady flips a member between NotReady and Ready and broadcasts the
// transition. Rejected while a match is running.
func (r *Room) ToggleReady(userID uint32) (model.Readiness, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inGame {
		return 0, ErrInGame
	}
	m := r.memberLocked(userID)
	if m == nil {
		return 0, ErrNotMember
	}

	if m.Status == model.StatusReady {
		m.Status = model.StatusNotReady
	} else {
		m.Status = model.StatusReady
	}

	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomSetPlayerReady(userID, m.Status))
	return m.Status, nil
}

// ResetMember returns one member to NotReady (used when the member reports
// it could not reach the host) and broadcasts the transition.
func (r *Room) ResetMember(userID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.memberLocked(userID)
	if m == nil {
		return ErrNotMember
	}
	m.Status = model.StatusNotReady
	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomSetPlayerReady(userID, m.Status))
	return nil
}

// SetUserTeam assigns a member's side. Host only, lobby state only.
func (r *Room) SetUserTeam(requesterID, targetID uint32, team model.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.hostUserID {
		return ErrNotHost
	}
	if r.inGame {
		return ErrInGame
	}
	m := r.memberLocked(targetID)
	if m == nil {
		return ErrNotMember
	}

	m.Team = team
	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomSetUserTeam(targetID, team))
	return nil
}

// UpdateSettings applies a host's settings diff and broadcasts the result.
// Toggling bots recomputes the slot cap.
func (r *Room) UpdateSettings(requesterID uint32, diff model.RoomSettingsDiff) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.hostUserID {
		return ErrNotHost
	}
	if r.inGame {
		return ErrInGame
	}

	if diff.RoomName != nil && *diff.RoomName != "" {
		r.name = *diff.RoomName
	}
	r.settings.Apply(diff)
	if diff.EnableBots != nil {
		r.maxPlayers = maxPlayersFor(r.settings)
	}

	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomUpdateSettings(r.name, r.settings))
	return nil
}

// ProgressCountdown validates one host countdown tick and broadcasts it.
// Ticks must not increase; the first tick starts from CountdownStart.
func (r *Room) ProgressCountdown(requesterID uint32, count uint8) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.hostUserID {
		return ErrNotHost
	}
	if r.inGame {
		return ErrInGame
	}
	if !r.countdownActive {
		r.countdownActive = true
		r.countdown = CountdownStart
	}
	if count > r.countdown {
		return ErrBadCountdown
	}

	r.countdown = count
	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomCountdown(count, true))
	return nil
}

// StopCountdown aborts the countdown and broadcasts the stop.
func (r *Room) StopCountdown(requesterID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.hostUserID {
		return ErrNotHost
	}
	if !r.countdownActive {
		return nil
	}

	r.countdownActive = false
	r.countdown = CountdownStart
	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomCountdown(r.countdown, false))
	return nil
}

// StartGame flips the room in-game. Host only, and every member must be
// ready. All members transition to InGame and learn the host's address.
func (r *Room) StartGame(requesterID uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requesterID != r.hostUserID {
		return ErrNotHost
	}
	if r.inGame {
		return ErrInGame
	}
	for _, m := range r.members {
		if m.UserID != r.hostUserID && m.Status != model.StatusReady {
			return ErrNotAllReady
		}
	}

	host := r.memberLocked(r.hostUserID)
	r.inGame = true
	r.countdownActive = false
	r.countdown = CountdownStart
	for _, m := range r.members {
		m.Status = model.StatusInGame
	}

	r.broadcastLocked(protocol.PacketTypeRoom,
		serverpackets.RoomGameStart(host.UserID, host.ExternalIP, host.ExternalPort))
	return nil
}

// EndGame returns the room to lobby state: every member back to NotReady,
// in-game flag cleared, game-end broadcast.
func (r *Room) EndGame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inGame {
		return ErrNotInGame
	}

	r.inGame = false
	for _, m := range r.members {
		m.Status = model.StatusNotReady
	}

	r.broadcastLocked(protocol.PacketTypeRoom, serverpackets.RoomGameEnd())
	return nil
}

// BroadcastChat relays a member's chat line to the whole room.
func (r *Room) BroadcastChat(userID uint32, userName, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(protocol.PacketTypeChat, serverpackets.Chat(userID, userName, message))
}

func (r *Room) memberLocked(userID uint32) *Member {
	for _, m := range r.members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

func (r *Room) membersSnapshotLocked() []*Member {
	snapshot := make([]*Member, len(r.members))
	copy(snapshot, r.members)
	return snapshot
}

func (r *Room) fullStateLocked() []byte {
	players := make([]serverpackets.RoomPlayer, 0, len(r.members))
	for _, m := range r.members {
		players = append(players, wirePlayer(m))
	}
	return serverpackets.RoomCreateAndJoin(r.id, r.name, r.hostUserID, r.maxPlayers, r.settings, players)
}

// broadcastLocked fans one frame out to a snapshot of the member list.
// Failed writes close the member's connection; the disconnect flows back
// through the read loop after this broadcast completes, never mid-iteration.
func (r *Room) broadcastLocked(typ protocol.PacketType, body []byte) {
	for _, m := range r.membersSnapshotLocked() {
		r.sendTo(m, typ, body)
	}
}

func (r *Room) sendTo(m *Member, typ protocol.PacketType, body []byte) {
	if err := m.Conn.Send(typ, body); err != nil {
		m.Conn.CloseAsync()
	}
}

func wirePlayer(m *Member) serverpackets.RoomPlayer {
	return serverpackets.RoomPlayer{
		UserID:   m.UserID,
		UserName: m.UserName,
		Team:     m.Team,
		Status:   m.Status,
	}
}
