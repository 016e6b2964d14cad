package clientpackets

import (
	"testing"

	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

func TestParseNewRoom(t *testing.T) {
	w := packet.NewWriter(32)
	w.WriteString("dust only")
	w.WriteUint8(2)
	w.WriteUint8(4)
	w.WriteUint8(15)
	w.WriteUint16(200)
	w.WriteUint16(800)
	w.WriteUint8(1)

	req, err := ParseNewRoom(packet.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("ParseNewRoom: %v", err)
	}
	if req.Name != "dust only" || req.GameModeID != 2 || req.MapID != 4 {
		t.Errorf("req = %+v", req)
	}
	if req.WinLimit != 15 || req.KillLimit != 200 || req.StartMoney != 800 || !req.EnableBots {
		t.Errorf("options = %+v", req)
	}
}

func TestParseNewRoom_Truncated(t *testing.T) {
	w := packet.NewWriter(8)
	w.WriteString("half")
	w.WriteUint8(2)

	if _, err := ParseNewRoom(packet.NewReader(w.Bytes())); err == nil {
		t.Error("expected error for truncated body")
	}
}

func TestParseUpdateSettings_FlaggedFieldsOnly(t *testing.T) {
	w := packet.NewWriter(16)
	w.WriteUint16(FlagRoomName | FlagKillLimit | FlagEnableBots)
	w.WriteString("renamed")
	w.WriteUint16(42)
	w.WriteUint8(1)

	diff, err := ParseUpdateSettings(packet.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("ParseUpdateSettings: %v", err)
	}
	if diff.RoomName == nil || *diff.RoomName != "renamed" {
		t.Errorf("RoomName = %v", diff.RoomName)
	}
	if diff.KillLimit == nil || *diff.KillLimit != 42 {
		t.Errorf("KillLimit = %v", diff.KillLimit)
	}
	if diff.EnableBots == nil || *diff.EnableBots != 1 {
		t.Errorf("EnableBots = %v", diff.EnableBots)
	}
	// Unflagged fields stay nil so Apply leaves them untouched.
	if diff.MapID != nil || diff.StartMoney != nil || diff.HltvEnabled != nil {
		t.Errorf("unflagged fields set: %+v", diff)
	}
}

func TestParseUpdateSettings_MissingFlaggedField(t *testing.T) {
	w := packet.NewWriter(4)
	w.WriteUint16(FlagKillLimit)
	// Flag announced, value absent.

	if _, err := ParseUpdateSettings(packet.NewReader(w.Bytes())); err == nil {
		t.Error("expected error when a flagged field is missing")
	}
}

func TestParseSetUserTeam(t *testing.T) {
	w := packet.NewWriter(8)
	w.WriteUint32(7)
	w.WriteUint8(uint8(model.TeamCounterTerrorist))

	req, err := ParseSetUserTeam(packet.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("ParseSetUserTeam: %v", err)
	}
	if req.UserID != 7 || req.Team != model.TeamCounterTerrorist {
		t.Errorf("req = %+v", req)
	}
}

func TestParseCountdown(t *testing.T) {
	w := packet.NewWriter(4)
	w.WriteUint8(1)
	w.WriteUint8(9)
	req, err := ParseCountdown(packet.NewReader(w.Bytes()))
	if err != nil || req.Stop || req.Count != 9 {
		t.Errorf("tick = %+v, %v", req, err)
	}

	w.Reset()
	w.WriteUint8(0)
	req, err = ParseCountdown(packet.NewReader(w.Bytes()))
	if err != nil || !req.Stop {
		t.Errorf("stop = %+v, %v", req, err)
	}
}
