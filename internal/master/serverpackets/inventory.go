package serverpackets

import (
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

// Favorite packet subtypes (shared opcode with inbound Favorite writes).
const (
	OutFavoriteSetLoadout   = 0
	OutFavoriteSetCosmetics = 1
)

// Option packet subtypes.
const (
	OutOptionSetBuyMenu = 0
)

// InventoryItems is the owned-stock projection sent at login.
func InventoryItems(items []model.InventoryItem) []byte {
	w := packet.NewWriter(8 + len(items)*6)
	w.WriteUint16(uint16(len(items)))
	for _, it := range items {
		w.WriteUint32(it.ItemID)
		w.WriteUint16(it.Count)
	}
	return w.Bytes()
}

// FavoriteCosmetics carries the eight cosmetic slots in client slot order.
func FavoriteCosmetics(c *model.Cosmetics) []byte {
	w := packet.NewWriter(4 + model.CosmeticSlotCount*4)
	w.WriteUint8(OutFavoriteSetCosmetics)
	slots := c.Slots()
	for slot, itemID := range slots {
		w.WriteUint8(uint8(slot))
		w.WriteUint32(itemID)
	}
	return w.Bytes()
}

// FavoriteLoadouts carries every loadout's weapon slots.
func FavoriteLoadouts(loadouts []model.Loadout) []byte {
	w := packet.NewWriter(8 + len(loadouts)*(2+model.LoadoutSlotCount*4))
	w.WriteUint8(OutFavoriteSetLoadout)
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

// OptionBuyMenu carries the buy menu configuration.
func OptionBuyMenu(m *model.BuyMenu) []byte {
	w := packet.NewWriter(8 + len(m.SubMenus)*(2+model.BuyMenuItemCount*4))
	w.WriteUint8(OutOptionSetBuyMenu)
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
