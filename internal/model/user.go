package model

// User is a cached snapshot of an account fetched from the user service.
// Instances are immutable in memory; a stale snapshot is replaced by a fresh
// fetch, never patched in place.
type User struct {
	UserID     uint32 `json:"userId"`
	UserName   string `json:"userName"`
	PlayerName string `json:"playerName"`
	Level      uint16 `json:"level"`
	Avatar     uint16 `json:"avatar"`
	CurExp     uint64 `json:"curExp"`
	MaxExp     uint64 `json:"maxExp"`
	Rank       uint8  `json:"rank"`
	VipLevel   uint8  `json:"vipLevel"`
	Wins       uint32 `json:"wins"`
	Kills      uint32 `json:"kills"`
	Deaths     uint32 `json:"deaths"`
	Assists    uint32 `json:"assists"`
}

// IsVip reports whether the account has any VIP tier.
func (u *User) IsVip() bool {
	return u.VipLevel > 0
}
