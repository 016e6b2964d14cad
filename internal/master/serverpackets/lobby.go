package serverpackets

import "github.com/nslott/masterserver/internal/packet"

// ChannelEntry is one channel row in the server list.
type ChannelEntry struct {
	ID        uint8
	Name      string
	RoomCount uint16
}

// ChannelServerEntry is one channel-server row in the server list.
type ChannelServerEntry struct {
	ID       uint8
	Name     string
	Channels []ChannelEntry
}

// ServerList enumerates the lobby tree advertised to clients after login.
func ServerList(servers []ChannelServerEntry) []byte {
	w := packet.NewWriter(64)
	w.WriteUint8(uint8(len(servers)))
	for _, srv := range servers {
		w.WriteUint8(srv.ID)
		w.WriteString(srv.Name)
		w.WriteUint8(uint8(len(srv.Channels)))
		for _, ch := range srv.Channels {
			w.WriteUint8(ch.ID)
			w.WriteString(ch.Name)
			w.WriteUint16(ch.RoomCount)
		}
	}
	return w.Bytes()
}

// RoomList packet subtypes.
const (
	OutRoomListFull   = 0
	OutRoomListAdd    = 1
	OutRoomListRemove = 2
)

// RoomListEntry is one room row shown to channel browsers.
type RoomListEntry struct {
	RoomID     uint16
	Name       string
	HostUserID uint32
	GameModeID uint8
	MapID      uint8
	Players    uint8
	MaxPlayers uint8
	InGame     bool
}

func writeRoomListEntry(w *packet.Writer, e RoomListEntry) {
	w.WriteUint16(e.RoomID)
	w.WriteString(e.Name)
	w.WriteUint32(e.HostUserID)
	w.WriteUint8(e.GameModeID)
	w.WriteUint8(e.MapID)
	w.WriteUint8(e.Players)
	w.WriteUint8(e.MaxPlayers)
	if e.InGame {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// RoomListFull is the complete room list of one channel.
func RoomListFull(entries []RoomListEntry) []byte {
	w := packet.NewWriter(8 + len(entries)*24)
	w.WriteUint8(OutRoomListFull)
	w.WriteUint16(uint16(len(entries)))
	for _, e := range entries {
		writeRoomListEntry(w, e)
	}
	return w.Bytes()
}

// RoomListAdd pushes a newly created room to current channel browsers.
func RoomListAdd(e RoomListEntry) []byte {
	w := packet.NewWriter(32)
	w.WriteUint8(OutRoomListAdd)
	writeRoomListEntry(w, e)
	return w.Bytes()
}

// RoomListRemove pushes a deleted room to current channel browsers.
func RoomListRemove(roomID uint16) []byte {
	w := packet.NewWriter(4)
	w.WriteUint8(OutRoomListRemove)
	w.WriteUint16(roomID)
	return w.Bytes()
}
