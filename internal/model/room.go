package model

// Team is a room member's side.
type Team uint8

const (
	TeamUnassigned Team = iota
	TeamTerrorist
	TeamCounterTerrorist
)

// Readiness is a room member's lobby status.
type Readiness uint8

const (
	StatusNotReady Readiness = iota
	StatusReady
	StatusInGame
)

func (r Readiness) String() string {
	switch r {
	case StatusNotReady:
		return "NOT_READY"
	case StatusReady:
		return "READY"
	case StatusInGame:
		return "IN_GAME"
	default:
		return "UNKNOWN"
	}
}

// RoomSettings are the host-controlled match options. Zero values are not
// meaningful defaults; use DefaultRoomSettings.
type RoomSettings struct {
	GameModeID         uint8
	MapID              uint8
	WinLimit           uint8
	KillLimit          uint16
	StartMoney         uint16
	ForceCamera        uint8
	NextMapEnabled     uint8
	ChangeTeams        uint8
	EnableBots         uint8
	Difficulty         uint8
	RespawnTime        uint8
	TeamBalance        uint8
	WeaponRestrictions uint8
	HltvEnabled        uint8
}

// DefaultRoomSettings returns the exact defaults the client expects for
// options the creating host left unspecified.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		GameModeID:         0,
		MapID:              1,
		WinLimit:           10,
		KillLimit:          150,
		StartMoney:         16000,
		ForceCamera:        1,
		NextMapEnabled:     0,
		ChangeTeams:        0,
		EnableBots:         0,
		Difficulty:         0,
		RespawnTime:        3,
		TeamBalance:        0,
		WeaponRestrictions: 0,
		HltvEnabled:        0,
	}
}

// RoomSettingsDiff is a partial settings update; nil fields are untouched.
type RoomSettingsDiff struct {
	RoomName           *string
	GameModeID         *uint8
	MapID              *uint8
	WinLimit           *uint8
	KillLimit          *uint16
	StartMoney         *uint16
	ForceCamera        *uint8
	NextMapEnabled     *uint8
	ChangeTeams        *uint8
	EnableBots         *uint8
	Difficulty         *uint8
	RespawnTime        *uint8
	TeamBalance        *uint8
	WeaponRestrictions *uint8
	HltvEnabled        *uint8
}

// Apply copies the set fields of the diff onto s and returns the new room
// name if the diff carried one.
func (s *RoomSettings) Apply(d RoomSettingsDiff) {
	if d.GameModeID != nil {
		s.GameModeID = *d.GameModeID
	}
	if d.MapID != nil {
		s.MapID = *d.MapID
	}
	if d.WinLimit != nil {
		s.WinLimit = *d.WinLimit
	}
	if d.KillLimit != nil {
		s.KillLimit = *d.KillLimit
	}
	if d.StartMoney != nil {
		s.StartMoney = *d.StartMoney
	}
	if d.ForceCamera != nil {
		s.ForceCamera = *d.ForceCamera
	}
	if d.NextMapEnabled != nil {
		s.NextMapEnabled = *d.NextMapEnabled
	}
	if d.ChangeTeams != nil {
		s.ChangeTeams = *d.ChangeTeams
	}
	if d.EnableBots != nil {
		s.EnableBots = *d.EnableBots
	}
	if d.Difficulty != nil {
		s.Difficulty = *d.Difficulty
	}
	if d.RespawnTime != nil {
		s.RespawnTime = *d.RespawnTime
	}
	if d.TeamBalance != nil {
		s.TeamBalance = *d.TeamBalance
	}
	if d.WeaponRestrictions != nil {
		s.WeaponRestrictions = *d.WeaponRestrictions
	}
	if d.HltvEnabled != nil {
		s.HltvEnabled = *d.HltvEnabled
	}
}
