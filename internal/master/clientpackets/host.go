package clientpackets

import (
	"fmt"

	"github.com/nslott/masterserver/internal/packet"
)

// Client→server Host packet subtypes. Only the elected host may send these;
// the server relays the target's inventory projections back to the host.
const (
	InHostGameEnd      = 0
	InHostSetInventory = 1
	InHostSetLoadout   = 2
	InHostSetBuyMenu   = 3
)

// HostTarget names the member whose projection the host requests.
type HostTarget struct {
	UserID uint32
}

// ParseHostTarget decodes the target user of a Host relay subtype.
func ParseHostTarget(r *packet.Reader) (HostTarget, error) {
	userID, err := r.ReadUint32()
	if err != nil {
		return HostTarget{}, fmt.Errorf("parsing Host target: %w", err)
	}
	return HostTarget{UserID: userID}, nil
}

// Client→server Favorite packet subtypes (write-through, no reply).
const (
	InFavoriteSetLoadout   = 0
	InFavoriteSetCosmetics = 1
)

// FavoriteSetLoadout writes one weapon slot of one loadout.
type FavoriteSetLoadout struct {
	LoadoutNum uint8
	WeaponSlot uint8
	ItemID     uint32
}

// ParseFavoriteSetLoadout decodes an InFavoriteSetLoadout body.
func ParseFavoriteSetLoadout(r *packet.Reader) (FavoriteSetLoadout, error) {
	var req FavoriteSetLoadout
	var err error

	if req.LoadoutNum, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing FavoriteSetLoadout: %w", err)
	}
	if req.WeaponSlot, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing FavoriteSetLoadout: %w", err)
	}
	if req.ItemID, err = r.ReadUint32(); err != nil {
		return req, fmt.Errorf("parsing FavoriteSetLoadout: %w", err)
	}
	return req, nil
}

// FavoriteSetCosmetics writes one cosmetic slot.
type FavoriteSetCosmetics struct {
	Slot   uint8
	ItemID uint32
}

// ParseFavoriteSetCosmetics decodes an InFavoriteSetCosmetics body.
func ParseFavoriteSetCosmetics(r *packet.Reader) (FavoriteSetCosmetics, error) {
	var req FavoriteSetCosmetics
	var err error

	if req.Slot, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing FavoriteSetCosmetics: %w", err)
	}
	if req.ItemID, err = r.ReadUint32(); err != nil {
		return req, fmt.Errorf("parsing FavoriteSetCosmetics: %w", err)
	}
	return req, nil
}

// Client→server Option packet subtypes (write-through, no reply).
const (
	InOptionSetBuyMenu = 0
)

// OptionSetBuyMenu writes one buy menu slot.
type OptionSetBuyMenu struct {
	SubMenu uint8
	Slot    uint8
	ItemID  uint32
}

// ParseOptionSetBuyMenu decodes an InOptionSetBuyMenu body.
func ParseOptionSetBuyMenu(r *packet.Reader) (OptionSetBuyMenu, error) {
	var req OptionSetBuyMenu
	var err error

	if req.SubMenu, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing OptionSetBuyMenu: %w", err)
	}
	if req.Slot, err = r.ReadUint8(); err != nil {
		return req, fmt.Errorf("parsing OptionSetBuyMenu: %w", err)
	}
	if req.ItemID, err = r.ReadUint32(); err != nil {
		return req, fmt.Errorf("parsing OptionSetBuyMenu: %w", err)
	}
	return req, nil
}
