package serverpackets

import (
	"net"

	"github.com/nslott/masterserver/internal/packet"
)

// Chat is a room chat line relayed to every member.
func Chat(userID uint32, userName, message string) []byte {
	w := packet.NewWriter(16 + len(userName) + len(message))
	w.WriteUint32(userID)
	w.WriteString(userName)
	w.WriteString(message)
	return w.Bytes()
}

// UdpReply echoes the external address the server observed for the client.
func UdpReply(ip net.IP, port uint16) []byte {
	w := packet.NewWriter(8)
	ip4 := ip.To4()
	if ip4 == nil {
		ip4 = net.IPv4zero.To4()
	}
	w.WriteBytes(ip4)
	w.WriteUint16(port)
	return w.Bytes()
}
