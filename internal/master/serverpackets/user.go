package serverpackets

import (
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

// VersionReply acknowledges the client's Version packet.
func VersionReply(ok bool, hash string) []byte {
	w := packet.NewWriter(32)
	if ok {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
	w.WriteString(hash)
	return w.Bytes()
}

// UserStart is the first packet after a successful login. It carries the
// identity the client plays under and the UDP port for NAT holepunching.
func UserStart(userID uint32, userName, playerName string, holepunchPort uint16) []byte {
	w := packet.NewWriter(64)
	w.WriteUint32(userID)
	w.WriteString(userName)
	w.WriteString(playerName)
	w.WriteUint16(holepunchPort)
	return w.Bytes()
}

// userInfoFullFlags marks every UserInfo field as present.
const userInfoFullFlags = 0xFFFFFFFF

// UserInfo is the full profile update sent at login.
func UserInfo(u *model.User) []byte {
	w := packet.NewWriter(96)
	w.WriteUint32(u.UserID)
	w.WriteUint32(userInfoFullFlags)
	w.WriteString(u.PlayerName)
	w.WriteUint16(u.Level)
	w.WriteUint16(u.Avatar)
	w.WriteUint64(u.CurExp)
	w.WriteUint64(u.MaxExp)
	w.WriteUint8(u.Rank)
	w.WriteUint8(u.VipLevel)
	w.WriteUint32(u.Wins)
	w.WriteUint32(u.Kills)
	w.WriteUint32(u.Deaths)
	w.WriteUint32(u.Assists)
	return w.Bytes()
}
