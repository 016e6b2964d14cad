package master

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
)

// HolepunchMagic stamps every valid holepunch datagram.
const HolepunchMagic = 0x57 // 'W'

// Holepunch is the UDP endpoint assisting NAT traversal: it answers each
// stamped datagram with the external ip:port it observed for the sender.
// No state is kept beyond the socket.
type Holepunch struct {
	bindAddress string
	port        int
}

// NewHolepunch creates the endpoint.
func NewHolepunch(bindAddress string, port int) *Holepunch {
	return &Holepunch{bindAddress: bindAddress, port: port}
}

// Run serves datagrams until ctx is cancelled.
func (h *Holepunch) Run(ctx context.Context) error {
	addr := &net.UDPAddr{IP: net.ParseIP(h.bindAddress), Port: h.port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("listening on udp %s:%d: %w", h.bindAddress, h.port, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	slog.Info("holepunch endpoint started", "address", conn.LocalAddr())

	buf := make([]byte, 64)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("holepunch read failed", "err", err)
			continue
		}

		if n < 1 || buf[0] != HolepunchMagic {
			slog.Debug("dropping unstamped holepunch datagram", "remote", remote)
			continue
		}

		reply := buildHolepunchReply(remote)
		if _, err := conn.WriteToUDP(reply, remote); err != nil {
			slog.Warn("holepunch reply failed", "remote", remote, "err", err)
		}
	}
}

// buildHolepunchReply encodes the observed source address: magic, IPv4
// bytes, then the port little-endian.
func buildHolepunchReply(remote *net.UDPAddr) []byte {
	reply := make([]byte, 7)
	reply[0] = HolepunchMagic

	ip4 := remote.IP.To4()
	if ip4 == nil {
		ip4 = net.IPv4zero.To4()
	}
	copy(reply[1:5], ip4)
	reply[5] = byte(remote.Port)
	reply[6] = byte(remote.Port >> 8)
	return reply
}
