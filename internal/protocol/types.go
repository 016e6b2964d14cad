package protocol

import "fmt"

// PacketType is the opcode carried in the first body byte of a frame.
type PacketType uint8

// Client→server packet types.
const (
	PacketTypeVersion         PacketType = 0
	PacketTypeLogin           PacketType = 3
	PacketTypeHeartbeat       PacketType = 8
	PacketTypeRequestChannels PacketType = 10
	PacketTypeRequestRoomList PacketType = 15
	PacketTypeRoom            PacketType = 65
	PacketTypeChat            PacketType = 67
	PacketTypeHost            PacketType = 68
	PacketTypeUdp             PacketType = 70
	PacketTypeOption          PacketType = 76
	PacketTypeFavorite        PacketType = 77
)

// Server→client packet types (the lobby set above is mirrored back with the
// same opcodes; these are server-only).
const (
	PacketTypeVersionReply PacketType = 1
	PacketTypeUserStart    PacketType = 150
	PacketTypeUserInfo     PacketType = 151
	PacketTypeInventory    PacketType = 152
	PacketTypeUnlock       PacketType = 154
	PacketTypeServerList   PacketType = 155
	PacketTypeRoomList     PacketType = 156
)

func (t PacketType) String() string {
	switch t {
	case PacketTypeVersion:
		return "Version"
	case PacketTypeVersionReply:
		return "VersionReply"
	case PacketTypeLogin:
		return "Login"
	case PacketTypeHeartbeat:
		return "Heartbeat"
	case PacketTypeRequestChannels:
		return "RequestChannels"
	case PacketTypeRequestRoomList:
		return "RequestRoomList"
	case PacketTypeRoom:
		return "Room"
	case PacketTypeChat:
		return "Chat"
	case PacketTypeHost:
		return "Host"
	case PacketTypeUdp:
		return "Udp"
	case PacketTypeOption:
		return "Option"
	case PacketTypeFavorite:
		return "Favorite"
	case PacketTypeUserStart:
		return "UserStart"
	case PacketTypeUserInfo:
		return "UserInfo"
	case PacketTypeInventory:
		return "Inventory"
	case PacketTypeUnlock:
		return "Unlock"
	case PacketTypeServerList:
		return "ServerList"
	case PacketTypeRoomList:
		return "RoomList"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(t))
	}
}
