package serverpackets

import (
	"net"

	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

// Server→client Room packet subtypes (first payload byte of PacketTypeRoom).
const (
	OutRoomCreateAndJoin  = 0
	OutRoomPlayerJoin     = 1
	OutRoomPlayerLeave    = 2
	OutRoomSetPlayerReady = 3
	OutRoomUpdateSettings = 4
	OutRoomSetHost        = 5
	OutRoomSetUserTeam    = 6
	OutRoomCountdown      = 7
	OutRoomGameStart      = 8
	OutRoomGameEnd        = 9
)

// RoomPlayer is the wire-facing view of one room member.
type RoomPlayer struct {
	UserID   uint32
	UserName string
	Team     model.Team
	Status   model.Readiness
}

func writeRoomPlayer(w *packet.Writer, p RoomPlayer) {
	w.WriteUint32(p.UserID)
	w.WriteString(p.UserName)
	w.WriteUint8(uint8(p.Team))
	w.WriteUint8(uint8(p.Status))
}

func writeRoomSettings(w *packet.Writer, name string, s model.RoomSettings) {
	w.WriteString(name)
	w.WriteUint8(s.GameModeID)
	w.WriteUint8(s.MapID)
	w.WriteUint8(s.WinLimit)
	w.WriteUint16(s.KillLimit)
	w.WriteUint16(s.StartMoney)
	w.WriteUint8(s.ForceCamera)
	w.WriteUint8(s.NextMapEnabled)
	w.WriteUint8(s.ChangeTeams)
	w.WriteUint8(s.EnableBots)
	w.WriteUint8(s.Difficulty)
	w.WriteUint8(s.RespawnTime)
	w.WriteUint8(s.TeamBalance)
	w.WriteUint8(s.WeaponRestrictions)
	w.WriteUint8(s.HltvEnabled)
}

// RoomCreateAndJoin is the full room state sent to a user entering a room.
func RoomCreateAndJoin(roomID uint16, name string, hostUserID uint32, maxPlayers uint8, settings model.RoomSettings, players []RoomPlayer) []byte {
	w := packet.NewWriter(64 + len(players)*32)
	w.WriteUint8(OutRoomCreateAndJoin)
	w.WriteUint16(roomID)
	w.WriteUint32(hostUserID)
	w.WriteUint8(maxPlayers)
	writeRoomSettings(w, name, settings)
	w.WriteUint16(uint16(len(players)))
	for _, p := range players {
		writeRoomPlayer(w, p)
	}
	return w.Bytes()
}

// RoomPlayerJoin announces a new member to the users already in the room.
func RoomPlayerJoin(p RoomPlayer) []byte {
	w := packet.NewWriter(32)
	w.WriteUint8(OutRoomPlayerJoin)
	writeRoomPlayer(w, p)
	return w.Bytes()
}

// RoomPlayerLeave announces a departed member.
func RoomPlayerLeave(userID uint32) []byte {
	w := packet.NewWriter(8)
	w.WriteUint8(OutRoomPlayerLeave)
	w.WriteUint32(userID)
	return w.Bytes()
}

// RoomSetPlayerReady announces a readiness transition.
func RoomSetPlayerReady(userID uint32, status model.Readiness) []byte {
	w := packet.NewWriter(8)
	w.WriteUint8(OutRoomSetPlayerReady)
	w.WriteUint32(userID)
	w.WriteUint8(uint8(status))
	return w.Bytes()
}

// RoomUpdateSettings announces the new settings after a host edit.
func RoomUpdateSettings(name string, s model.RoomSettings) []byte {
	w := packet.NewWriter(64)
	w.WriteUint8(OutRoomUpdateSettings)
	writeRoomSettings(w, name, s)
	return w.Bytes()
}

// RoomSetHost announces the newly elected host.
func RoomSetHost(userID uint32) []byte {
	w := packet.NewWriter(8)
	w.WriteUint8(OutRoomSetHost)
	w.WriteUint32(userID)
	return w.Bytes()
}

// RoomSetUserTeam announces a team assignment.
func RoomSetUserTeam(userID uint32, team model.Team) []byte {
	w := packet.NewWriter(8)
	w.WriteUint8(OutRoomSetUserTeam)
	w.WriteUint32(userID)
	w.WriteUint8(uint8(team))
	return w.Bytes()
}

// RoomCountdown carries the current pre-match countdown tick, or stops it.
func RoomCountdown(count uint8, active bool) []byte {
	w := packet.NewWriter(4)
	w.WriteUint8(OutRoomCountdown)
	if active {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
	w.WriteUint8(count)
	return w.Bytes()
}

// RoomGameStart tells members where the elected host runs the match.
func RoomGameStart(hostUserID uint32, hostIP net.IP, hostPort uint16) []byte {
	w := packet.NewWriter(16)
	w.WriteUint8(OutRoomGameStart)
	w.WriteUint32(hostUserID)
	ip4 := hostIP.To4()
	if ip4 == nil {
		ip4 = net.IPv4zero.To4()
	}
	w.WriteBytes(ip4)
	w.WriteUint16(hostPort)
	return w.Bytes()
}

// RoomGameEnd returns the room to lobby state on every member's screen.
func RoomGameEnd() []byte {
	w := packet.NewWriter(2)
	w.WriteUint8(OutRoomGameEnd)
	return w.Bytes()
}
