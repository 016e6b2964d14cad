package lobby

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nslott/masterserver/internal/master/serverpackets"
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/protocol"
)

// Channel is one logical sub-lobby: a set of rooms plus the connections
// currently browsing its room list. Room ids are monotonic and never reused
// within the channel server's lifetime.
type Channel struct {
	mu sync.Mutex

	id   uint8
	name string

	rooms      map[uint16]*Room
	nextRoomID uint16

	browsers map[uuid.UUID]Conn
}

// NewChannel creates an empty channel.
func NewChannel(id uint8, name string) *Channel {
	return &Channel{
		id:       id,
		name:     name,
		rooms:    make(map[uint16]*Room),
		browsers: make(map[uuid.UUID]Conn),
	}
}

// ID returns the channel id.
func (c *Channel) ID() uint8 {
	return c.id
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.name
}

// RoomCount returns the number of live rooms.
func (c *Channel) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// GetRoom returns a room by id.
func (c *Channel) GetRoom(id uint16) (*Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, ok := c.rooms[id]
	return room, ok
}

// CreateRoom allocates the next room id, builds the room with host as its
// first member and announces it to current browsers of the channel.
// When the room later empties it removes itself and notifies browsers.
func (c *Channel) CreateRoom(name string, settings model.RoomSettings, host *Member) *Room {
	c.mu.Lock()
	c.nextRoomID++
	id := c.nextRoomID
	c.mu.Unlock()

	// NewRoom sends the full room state to the host; keep that outside the
	// channel lock.
	room := NewRoom(id, name, settings, host, c.removeEmptyRoom)

	c.mu.Lock()
	c.rooms[id] = room
	c.mu.Unlock()

	c.notifyBrowsers(serverpackets.RoomListAdd(room.ListEntry()))
	return room
}

func (c *Channel) removeEmptyRoom(room *Room) {
	c.mu.Lock()
	delete(c.rooms, room.ID())
	c.mu.Unlock()

	c.notifyBrowsers(serverpackets.RoomListRemove(room.ID()))
}

// ListEntries returns the browser view of every room.
func (c *Channel) ListEntries() []serverpackets.RoomListEntry {
	c.mu.Lock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.mu.Unlock()

	entries := make([]serverpackets.RoomListEntry, 0, len(rooms))
	for _, room := range rooms {
		entries = append(entries, room.ListEntry())
	}
	return entries
}

// AddBrowser subscribes a connection to room list updates of this channel.
func (c *Channel) AddBrowser(id uuid.UUID, conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.browsers[id] = conn
}

// RemoveBrowser unsubscribes a connection.
func (c *Channel) RemoveBrowser(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.browsers, id)
}

// notifyBrowsers fans a room list update out to a snapshot of the browser
// set. A failed send closes the connection and evicts its entry, so a dead
// browser cannot linger in the registry (its teardown may target another
// channel after a duplicate-login replacement).
func (c *Channel) notifyBrowsers(body []byte) {
	type entry struct {
		id   uuid.UUID
		conn Conn
	}

	c.mu.Lock()
	snapshot := make([]entry, 0, len(c.browsers))
	for id, conn := range c.browsers {
		snapshot = append(snapshot, entry{id: id, conn: conn})
	}
	c.mu.Unlock()

	var failed []entry
	for _, e := range snapshot {
		if err := e.conn.Send(protocol.PacketTypeRoomList, body); err != nil {
			e.conn.CloseAsync()
			failed = append(failed, e)
		}
	}
	if len(failed) == 0 {
		return
	}

	c.mu.Lock()
	for _, e := range failed {
		// Evict only if the slot still holds the broken connection.
		if c.browsers[e.id] == e.conn {
			delete(c.browsers, e.id)
		}
	}
	c.mu.Unlock()
}
