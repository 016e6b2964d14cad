package model

// Inventory projections owned by the inventory service. The master server
// never persists these; it reads them through the gateway and relays them.

// InventoryItem is one owned stock entry.
type InventoryItem struct {
	ItemID uint32 `json:"itemId"`
	Count  uint16 `json:"count"`
}

// Cosmetic slot indexes. The client expects exactly these eight slots.
const (
	CosmeticSlotCT uint8 = iota
	CosmeticSlotTer
	CosmeticSlotHead
	CosmeticSlotGlove
	CosmeticSlotBack
	CosmeticSlotSteps
	CosmeticSlotCard
	CosmeticSlotSpray

	CosmeticSlotCount = 8
)

// Cosmetics holds the eight fixed cosmetic slots.
type Cosmetics struct {
	CTItem    uint32 `json:"ctItem"`
	TerItem   uint32 `json:"terItem"`
	HeadItem  uint32 `json:"headItem"`
	GloveItem uint32 `json:"gloveItem"`
	BackItem  uint32 `json:"backItem"`
	StepsItem uint32 `json:"stepsItem"`
	CardItem  uint32 `json:"cardItem"`
	SprayItem uint32 `json:"sprayItem"`
}

// Slots returns the cosmetic item ids in client slot order.
func (c *Cosmetics) Slots() [CosmeticSlotCount]uint32 {
	return [CosmeticSlotCount]uint32{
		c.CTItem, c.TerItem, c.HeadItem, c.GloveItem,
		c.BackItem, c.StepsItem, c.CardItem, c.SprayItem,
	}
}

// LoadoutSlotCount is the number of weapon slots per loadout.
const LoadoutSlotCount = 16

// Loadout is one named weapon configuration.
type Loadout struct {
	LoadoutNum uint8    `json:"loadoutNum"`
	Weapons    []uint32 `json:"weapons"`
}

// BuyMenu layout: nine submenus of nine items each.
const (
	BuyMenuSubCount  = 9
	BuyMenuItemCount = 9
)

// BuyMenu is the per-user buy menu configuration.
type BuyMenu struct {
	SubMenus [][]uint32 `json:"subMenus"`
}
