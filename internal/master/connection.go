package master

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nslott/masterserver/internal/lobby"
	"github.com/nslott/masterserver/internal/protocol"
)

// Connection is the per-socket state: identity, outbound sequence counter,
// protocol state, owner binding and current room. One read loop owns the
// inbound side; Send serializes the outbound side.
type Connection struct {
	id   uuid.UUID
	conn net.Conn
	ip   string

	logPackets bool

	// state uses atomic for lock-free reads on the dispatch path.
	state atomic.Int32

	// writeMu guards conn writes and the sequence counter.
	writeMu sync.Mutex
	seq     byte

	// mu guards owner binding and the room pointer.
	mu      sync.Mutex
	ownerID uint32
	room    *lobby.Room

	closeOnce sync.Once
}

// NewConnection wraps an accepted socket.
func NewConnection(conn net.Conn, logPackets bool) (*Connection, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}

	c := &Connection{
		id:         uuid.New(),
		conn:       conn,
		ip:         host,
		logPackets: logPackets,
	}
	c.state.Store(int32(StateConnected))
	return c, nil
}

// ID returns the connection's stable UUID.
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// IP returns the remote IP address.
func (c *Connection) IP() string {
	return c.ip
}

// Conn returns the underlying socket.
func (c *Connection) Conn() net.Conn {
	return c.conn
}

// State returns the current protocol state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// SetState advances the protocol state.
func (c *Connection) SetState(s ConnectionState) {
	c.state.Store(int32(s))
}

// OwnerID returns the bound userId, 0 before login.
func (c *Connection) OwnerID() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ownerID
}

// BindOwner binds the connection to a userId. Set once, after login.
func (c *Connection) BindOwner(userID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ownerID = userID
}

// Room returns the room this connection's user occupies, nil outside rooms.
func (c *Connection) Room() *lobby.Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// SetRoom records room membership (nil clears it).
func (c *Connection) SetRoom(r *lobby.Room) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = r
}

// Sequence returns the next outbound sequence byte.
func (c *Connection) Sequence() byte {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.seq
}

// Send writes one frame. The sequence counter increments after the write
// and wraps 255→0. Frames are written in the order handlers produce them.
func (c *Connection) Send(typ protocol.PacketType, body []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.logPackets {
		slog.Debug("outbound frame",
			"conn", c.id, "type", typ, "seq", c.seq, "body", hex.EncodeToString(body))
	}

	if err := protocol.WriteFrame(c.conn, c.seq, typ, body); err != nil {
		return fmt.Errorf("sending %s: %w", typ, err)
	}
	c.seq++
	return nil
}

// CloseAsync closes the socket without waiting. The read loop observes the
// closed socket and runs disconnect processing on its own goroutine, so
// CloseAsync is safe to call under lobby locks.
func (c *Connection) CloseAsync() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// Close closes the socket.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
