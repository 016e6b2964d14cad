package lobby

import "github.com/nslott/masterserver/internal/protocol"

// Conn is the transport surface a room member or channel browser exposes to
// the lobby. Implemented by master.Connection.
type Conn interface {
	// Send writes one frame. Best-effort: an error marks the peer broken.
	Send(typ protocol.PacketType, body []byte) error
	// CloseAsync tears the connection down without waiting. Disconnect
	// processing (session and room removal) runs on the owning read loop,
	// never on the caller, so it is safe under lobby locks.
	CloseAsync()
}
