package clientpackets

import (
	"fmt"

	"github.com/nslott/masterserver/internal/packet"
)

// Version is the handshake opener; the build number is logged, never gated.
type Version struct {
	IsBeta bool
	Build  uint16
}

// ParseVersion decodes a Version payload.
func ParseVersion(data []byte) (Version, error) {
	r := packet.NewReader(data)

	isBeta, err := r.ReadUint8()
	if err != nil {
		return Version{}, fmt.Errorf("parsing Version: %w", err)
	}
	build, err := r.ReadUint16()
	if err != nil {
		return Version{}, fmt.Errorf("parsing Version: %w", err)
	}

	return Version{IsBeta: isBeta != 0, Build: build}, nil
}

// Login carries the credentials forwarded to the user service.
type Login struct {
	Username string
	Password string
}

// ParseLogin decodes a Login payload.
func ParseLogin(data []byte) (Login, error) {
	r := packet.NewReader(data)

	username, err := r.ReadString()
	if err != nil {
		return Login{}, fmt.Errorf("parsing Login username: %w", err)
	}
	password, err := r.ReadString()
	if err != nil {
		return Login{}, fmt.Errorf("parsing Login password: %w", err)
	}

	return Login{Username: username, Password: password}, nil
}

// RequestRoomList asks for one channel's rooms and marks the sender as a
// browser of that channel.
type RequestRoomList struct {
	ChannelServerIndex uint8
	ChannelIndex       uint8
}

// ParseRequestRoomList decodes a RequestRoomList payload.
func ParseRequestRoomList(data []byte) (RequestRoomList, error) {
	r := packet.NewReader(data)

	serverIdx, err := r.ReadUint8()
	if err != nil {
		return RequestRoomList{}, fmt.Errorf("parsing RequestRoomList: %w", err)
	}
	channelIdx, err := r.ReadUint8()
	if err != nil {
		return RequestRoomList{}, fmt.Errorf("parsing RequestRoomList: %w", err)
	}

	return RequestRoomList{ChannelServerIndex: serverIdx, ChannelIndex: channelIdx}, nil
}

// Chat is a room chat line.
type Chat struct {
	Message string
}

// ParseChat decodes a Chat payload.
func ParseChat(data []byte) (Chat, error) {
	r := packet.NewReader(data)

	message, err := r.ReadString()
	if err != nil {
		return Chat{}, fmt.Errorf("parsing Chat: %w", err)
	}
	return Chat{Message: message}, nil
}

// Udp is the TCP-side holepunch handshake: the client announces the local
// port it will punch from.
type Udp struct {
	LocalPort uint16
}

// ParseUdp decodes a Udp payload.
func ParseUdp(data []byte) (Udp, error) {
	r := packet.NewReader(data)

	port, err := r.ReadUint16()
	if err != nil {
		return Udp{}, fmt.Errorf("parsing Udp: %w", err)
	}
	return Udp{LocalPort: port}, nil
}
