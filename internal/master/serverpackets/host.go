package serverpackets

import (
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

// Server→client Host packet subtypes: projections of another member's
// state relayed to the elected host.
const (
	OutHostGameEnd      = 0
	OutHostSetInventory = 1
	OutHostSetLoadout   = 2
	OutHostSetBuyMenu   = 3
)

// HostSetInventory carries the target member's owned stock to the host.
func HostSetInventory(userID uint32, items []model.InventoryItem) []byte {
	w := packet.NewWriter(8 + len(items)*6)
	w.WriteUint8(OutHostSetInventory)
	w.WriteUint32(userID)
	w.WriteUint16(uint16(len(items)))
	for _, it := range items {
		w.WriteUint32(it.ItemID)
		w.WriteUint16(it.Count)
	}
	return w.Bytes()
}

// HostSetLoadout carries the target member's loadouts to the host.
func HostSetLoadout(userID uint32, loadouts []model.Loadout) []byte {
	w := packet.NewWriter(8 + len(loadouts)*(2+model.LoadoutSlotCount*4))
	w.WriteUint8(OutHostSetLoadout)
	w.WriteUint32(userID)
	w.WriteUint16(uint16(len(loadouts)))
	for _, l := range loadouts {
		w.WriteUint8(l.LoadoutNum)
		w.WriteUint16(uint16(len(l.Weapons)))
		for _, weapon := range l.Weapons {
			w.WriteUint32(weapon)
		}
	}
	return w.Bytes()
}

// HostSetBuyMenu carries the target member's buy menu to the host.
func HostSetBuyMenu(userID uint32, m *model.BuyMenu) []byte {
	w := packet.NewWriter(8 + len(m.SubMenus)*(2+model.BuyMenuItemCount*4))
	w.WriteUint8(OutHostSetBuyMenu)
	w.WriteUint32(userID)
	w.WriteUint16(uint16(len(m.SubMenus)))
	for sub, items := range m.SubMenus {
		w.WriteUint8(uint8(sub))
		w.WriteUint16(uint16(len(items)))
		for _, itemID := range items {
			w.WriteUint32(itemID)
		}
	}
	return w.Bytes()
}
