package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nslott/masterserver/internal/model"
)

// InventoryService is the HTTP client for the out-of-process inventory
// service. Reads are never cached — the authoritative service may mutate
// projections out-of-band. Writes are write-through.
type InventoryService struct {
	svc *service
}

// NewInventoryService creates a client against baseURL (scheme://host:port).
func NewInventoryService(baseURL string) *InventoryService {
	return &InventoryService{
		svc: newService("invservice", baseURL, DefaultRequestTimeout, DefaultPingInterval),
	}
}

// NewInventoryServiceWithTimeouts is NewInventoryService with explicit
// request timeout and ping cadence, for tests.
func NewInventoryServiceWithTimeouts(baseURL string, timeout, pingInterval time.Duration) *InventoryService {
	return &InventoryService{
		svc: newService("invservice", baseURL, timeout, pingInterval),
	}
}

// Run drives the liveness pinger until ctx is cancelled.
func (i *InventoryService) Run(ctx context.Context) {
	i.svc.pinger.Run(ctx)
}

// Alive reports the last known liveness of the inventory service.
func (i *InventoryService) Alive() bool {
	return i.svc.pinger.Alive()
}

// Items returns the user's owned stock.
func (i *InventoryService) Items(ctx context.Context, userID uint32) ([]model.InventoryItem, bool, error) {
	var items []model.InventoryItem
	found, err := i.svc.getJSON(ctx, fmt.Sprintf("/inventory/%d/items", userID), &items)
	if err != nil || !found {
		return nil, false, err
	}
	return items, true, nil
}

// Cosmetics returns the user's eight cosmetic slots.
func (i *InventoryService) Cosmetics(ctx context.Context, userID uint32) (*model.Cosmetics, bool, error) {
	var cosmetics model.Cosmetics
	found, err := i.svc.getJSON(ctx, fmt.Sprintf("/inventory/%d/cosmetics", userID), &cosmetics)
	if err != nil || !found {
		return nil, false, err
	}
	return &cosmetics, true, nil
}

// Loadouts returns all of the user's weapon loadouts.
func (i *InventoryService) Loadouts(ctx context.Context, userID uint32) ([]model.Loadout, bool, error) {
	var loadouts []model.Loadout
	found, err := i.svc.getJSON(ctx, fmt.Sprintf("/inventory/%d/loadouts", userID), &loadouts)
	if err != nil || !found {
		return nil, false, err
	}
	return loadouts, true, nil
}

// BuyMenu returns the user's buy menu configuration.
func (i *InventoryService) BuyMenu(ctx context.Context, userID uint32) (*model.BuyMenu, bool, error) {
	var menu model.BuyMenu
	found, err := i.svc.getJSON(ctx, fmt.Sprintf("/inventory/%d/buymenu", userID), &menu)
	if err != nil || !found {
		return nil, false, err
	}
	return &menu, true, nil
}

// SetLoadoutWeapon writes one weapon slot of one loadout.
func (i *InventoryService) SetLoadoutWeapon(ctx context.Context, userID uint32, loadoutNum, weaponSlot uint8, itemID uint32) error {
	body := struct {
		LoadoutNum uint8  `json:"loadoutNum"`
		WeaponSlot uint8  `json:"weaponSlot"`
		ItemID     uint32 `json:"itemId"`
	}{loadoutNum, weaponSlot, itemID}

	if _, err := i.svc.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d/loadouts", userID), body, nil); err != nil {
		return fmt.Errorf("setting loadout weapon: %w", err)
	}
	return nil
}

// SetCosmeticSlot writes one cosmetic slot.
func (i *InventoryService) SetCosmeticSlot(ctx context.Context, userID uint32, slot uint8, itemID uint32) error {
	body := struct {
		Slot   uint8  `json:"slot"`
		ItemID uint32 `json:"itemId"`
	}{slot, itemID}

	if _, err := i.svc.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d/cosmetics", userID), body, nil); err != nil {
		return fmt.Errorf("setting cosmetic slot: %w", err)
	}
	return nil
}

// SetBuyMenuItem writes one buy menu slot.
func (i *InventoryService) SetBuyMenuItem(ctx context.Context, userID uint32, subMenu, slot uint8, itemID uint32) error {
	body := struct {
		SubMenu uint8  `json:"subMenu"`
		Slot    uint8  `json:"slot"`
		ItemID  uint32 `json:"itemId"`
	}{subMenu, slot, itemID}

	if _, err := i.svc.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d/buymenu", userID), body, nil); err != nil {
		return fmt.Errorf("setting buy menu item: %w", err)
	}
	return nil
}
