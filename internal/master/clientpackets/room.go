package clientpackets

import (
	"fmt"

	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

// Client→server Room packet subtypes (first payload byte of PacketTypeRoom).
const (
	InRoomNewRoom           = 0
	InRoomJoinRoom          = 1
	InRoomLeaveRoom         = 2
	InRoomToggleReady       = 3
	InRoomGameStart         = 4
	InRoomUpdateSettings    = 5
	InRoomSetUserTeam       = 6
	InRoomCountdown         = 7
	InRoomConnectionFailure = 8
)

// NewRoom is the room creation request. Omitted options take client defaults.
type NewRoom struct {
	Name       string
	GameModeID uint8
	MapID      uint8
	WinLimit   uint8
	KillLimit  uint16
	StartMoney uint16
	EnableBots bool
}

// ParseNewRoom decodes an InRoomNewRoom body (subtype byte already consumed).
func ParseNewRoom(r *packet.Reader) (NewRoom, error) {
	var req NewRoom
	var err error

	if req.Name, err = r.ReadString(); err != nil {
		return req, fmt.Errorf("parsing NewRoom name: %w", err)
	}
	if req.GameModeID, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing NewRoom gameMode: %w", err)
	}
	if req.MapID, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing NewRoom map: %w", err)
	}
	if req.WinLimit, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing NewRoom winLimit: %w", err)
	}
	if req.KillLimit, err = r.ReadUint16(); err != nil {
		return req, fmt.Errorf("parsing NewRoom killLimit: %w", err)
	}
	if req.StartMoney, err = r.ReadUint16(); err != nil {
		return req, fmt.Errorf("parsing NewRoom startMoney: %w", err)
	}
	bots, err := r.ReadUint8()
	if err != nil {
		return req, fmt.Errorf("parsing NewRoom enableBots: %w", err)
	}
	req.EnableBots = bots != 0

	return req, nil
}

// JoinRoom requests entry into an existing room of the current channel.
type JoinRoom struct {
	RoomID uint16
}

// ParseJoinRoom decodes an InRoomJoinRoom body.
func ParseJoinRoom(r *packet.Reader) (JoinRoom, error) {
	roomID, err := r.ReadUint16()
	if err != nil {
		return JoinRoom{}, fmt.Errorf("parsing JoinRoom: %w", err)
	}
	return JoinRoom{RoomID: roomID}, nil
}

// Settings diff flag bits for InRoomUpdateSettings.
const (
	FlagRoomName uint16 = 1 << iota
	FlagGameModeID
	FlagMapID
	FlagWinLimit
	FlagKillLimit
	FlagStartMoney
	FlagForceCamera
	FlagNextMapEnabled
	FlagChangeTeams
	FlagEnableBots
	FlagDifficulty
	FlagRespawnTime
	FlagTeamBalance
	FlagWeaponRestrictions
	FlagHltvEnabled
)

// ParseUpdateSettings decodes an InRoomUpdateSettings body into a diff.
// The wire carries a flags mask followed by the flagged fields in bit order.
func ParseUpdateSettings(r *packet.Reader) (model.RoomSettingsDiff, error) {
	var diff model.RoomSettingsDiff

	flags, err := r.ReadUint16()
	if err != nil {
		return diff, fmt.Errorf("parsing UpdateSettings flags: %w", err)
	}

	readU8 := func(name string, dst **uint8) error {
		v, err := r.ReadUint8()
		if err != nil {
			return fmt.Errorf("parsing UpdateSettings %s: %w", name, err)
		}
		*dst = &v
		return nil
	}
	readU16 := func(name string, dst **uint16) error {
		v, err := r.ReadUint16()
		if err != nil {
			return fmt.Errorf("parsing UpdateSettings %s: %w", name, err)
		}
		*dst = &v
		return nil
	}

	if flags&FlagRoomName != 0 {
		name, err := r.ReadString()
		if err != nil {
			return diff, fmt.Errorf("parsing UpdateSettings roomName: %w", err)
		}
		diff.RoomName = &name
	}
	if flags&FlagGameModeID != 0 {
		if err := readU8("gameMode", &diff.GameModeID); err != nil {
			return diff, err
		}
	}
	if flags&FlagMapID != 0 {
		if err := readU8("map", &diff.MapID); err != nil {
			return diff, err
		}
	}
	if flags&FlagWinLimit != 0 {
		if err := readU8("winLimit", &diff.WinLimit); err != nil {
			return diff, err
		}
	}
	if flags&FlagKillLimit != 0 {
		if err := readU16("killLimit", &diff.KillLimit); err != nil {
			return diff, err
		}
	}
	if flags&FlagStartMoney != 0 {
		if err := readU16("startMoney", &diff.StartMoney); err != nil {
			return diff, err
		}
	}
	if flags&FlagForceCamera != 0 {
		if err := readU8("forceCamera", &diff.ForceCamera); err != nil {
			return diff, err
		}
	}
	if flags&FlagNextMapEnabled != 0 {
		if err := readU8("nextMapEnabled", &diff.NextMapEnabled); err != nil {
			return diff, err
		}
	}
	if flags&FlagChangeTeams != 0 {
		if err := readU8("changeTeams", &diff.ChangeTeams); err != nil {
			return diff, err
		}
	}
	if flags&FlagEnableBots != 0 {
		if err := readU8("enableBots", &diff.EnableBots); err != nil {
			return diff, err
		}
	}
	if flags&FlagDifficulty != 0 {
		if err := readU8("difficulty", &diff.Difficulty); err != nil {
			return diff, err
		}
	}
	if flags&FlagRespawnTime != 0 {
		if err := readU8("respawnTime", &diff.RespawnTime); err != nil {
			return diff, err
		}
	}
	if flags&FlagTeamBalance != 0 {
		if err := readU8("teamBalance", &diff.TeamBalance); err != nil {
			return diff, err
		}
	}
	if flags&FlagWeaponRestrictions != 0 {
		if err := readU8("weaponRestrictions", &diff.WeaponRestrictions); err != nil {
			return diff, err
		}
	}
	if flags&FlagHltvEnabled != 0 {
		if err := readU8("hltvEnabled", &diff.HltvEnabled); err != nil {
			return diff, err
		}
	}

	return diff, nil
}

// SetUserTeam is the host assigning a member's side.
type SetUserTeam struct {
	UserID uint32
	Team   model.Team
}

// ParseSetUserTeam decodes an InRoomSetUserTeam body.
func ParseSetUserTeam(r *packet.Reader) (SetUserTeam, error) {
	userID, err := r.ReadUint32()
	if err != nil {
		return SetUserTeam{}, fmt.Errorf("parsing SetUserTeam: %w", err)
	}
	team, err := r.ReadUint8()
	if err != nil {
		return SetUserTeam{}, fmt.Errorf("parsing SetUserTeam: %w", err)
	}
	return SetUserTeam{UserID: userID, Team: model.Team(team)}, nil
}

// Countdown is a host countdown tick or stop request.
type Countdown struct {
	Stop  bool
	Count uint8
}

// ParseCountdown decodes an InRoomCountdown body.
func ParseCountdown(r *packet.Reader) (Countdown, error) {
	kind, err := r.ReadUint8()
	if err != nil {
		return Countdown{}, fmt.Errorf("parsing Countdown: %w", err)
	}
	if kind == 0 {
		return Countdown{Stop: true}, nil
	}
	count, err := r.ReadUint8()
	if err != nil {
		return Countdown{}, fmt.Errorf("parsing Countdown: %w", err)
	}
	return Countdown{Count: count}, nil
}
