package master

import (
	"net"
	"testing"
)

func TestBuildHolepunchReply(t *testing.T) {
	remote := &net.UDPAddr{IP: net.IPv4(203, 0, 113, 9), Port: 0x1F90} // 8080

	reply := buildHolepunchReply(remote)
	want := []byte{HolepunchMagic, 203, 0, 113, 9, 0x90, 0x1F}
	if len(reply) != len(want) {
		t.Fatalf("reply length = %d, want %d", len(reply), len(want))
	}
	for i := range want {
		if reply[i] != want[i] {
			t.Errorf("byte %d = 0x%02X, want 0x%02X", i, reply[i], want[i])
		}
	}
}

func TestBuildHolepunchReply_NonIPv4(t *testing.T) {
	remote := &net.UDPAddr{IP: net.ParseIP("2001:db8::1"), Port: 4000}

	reply := buildHolepunchReply(remote)
	// Unmappable addresses degrade to 0.0.0.0 rather than panicking.
	for i := 1; i < 5; i++ {
		if reply[i] != 0 {
			t.Errorf("ip byte %d = %d, want 0", i, reply[i])
		}
	}
}
