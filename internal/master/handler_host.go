package master

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nslott/masterserver/internal/master/clientpackets"
	"github.com/nslott/masterserver/internal/master/serverpackets"
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
	"github.com/nslott/masterserver/internal/protocol"
)

// handleHost serves the elected host: ending the match and pulling other
// members' inventory projections through the gateway. Every failure in the
// authorization chain drops the packet and keeps the socket.
func (h *Handler) handleHost(ctx context.Context, conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("host packet without session")
	}

	r := packet.NewReader(payload)
	subtype, err := r.ReadUint8()
	if err != nil {
		return true, fmt.Errorf("parsing host subtype: %w", err)
	}

	if subtype == clientpackets.InHostGameEnd {
		return h.handleGameEnd(conn, session)
	}

	target, err := clientpackets.ParseHostTarget(r)
	if err != nil {
		return true, err
	}

	if !h.authorizeHostRelay(conn, session, target.UserID) {
		return true, nil
	}

	switch subtype {
	case clientpackets.InHostSetInventory:
		items, found, err := h.inventory.Items(ctx, target.UserID)
		if err != nil || !found {
			slog.Warn("host relay: inventory unavailable", "targetUserId", target.UserID, "err", err)
			return true, nil
		}
		if err := conn.Send(protocol.PacketTypeHost, serverpackets.HostSetInventory(target.UserID, items)); err != nil {
			return false, err
		}

	case clientpackets.InHostSetLoadout:
		loadouts, found, err := h.inventory.Loadouts(ctx, target.UserID)
		if err != nil || !found {
			slog.Warn("host relay: loadouts unavailable", "targetUserId", target.UserID, "err", err)
			return true, nil
		}
		if err := conn.Send(protocol.PacketTypeHost, serverpackets.HostSetLoadout(target.UserID, loadouts)); err != nil {
			return false, err
		}

	case clientpackets.InHostSetBuyMenu:
		menu, found, err := h.inventory.BuyMenu(ctx, target.UserID)
		if err != nil || !found {
			slog.Warn("host relay: buy menu unavailable", "targetUserId", target.UserID, "err", err)
			return true, nil
		}
		if err := conn.Send(protocol.PacketTypeHost, serverpackets.HostSetBuyMenu(target.UserID, menu)); err != nil {
			return false, err
		}

	default:
		slog.Warn("unknown host subtype", "subtype", subtype, "userId", session.UserID())
	}
	return true, nil
}

// authorizeHostRelay checks the full relay chain: requester in a room,
// requester is the room host, target has a session and target is a member
// of the requester's room. No gateway call happens unless all hold.
func (h *Handler) authorizeHostRelay(conn *Connection, session *model.Session, targetUserID uint32) bool {
	r := conn.Room()
	if r == nil {
		slog.Warn("host relay from user outside a room", "userId", session.UserID())
		return false
	}
	if r.HostUserID() != session.UserID() {
		slog.Warn("host relay from non-host", "userId", session.UserID(), "roomId", r.ID())
		return false
	}
	if _, ok := h.sessions.Get(targetUserID); !ok {
		slog.Warn("host relay target has no session", "targetUserId", targetUserID, "roomId", r.ID())
		return false
	}
	if !r.HasMember(targetUserID) {
		slog.Warn("host relay target not in room", "targetUserId", targetUserID, "roomId", r.ID())
		return false
	}
	return true
}

func (h *Handler) handleGameEnd(conn *Connection, session *model.Session) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("game end without a room")
	}
	if room.HostUserID() != session.UserID() {
		slog.Warn("game end from non-host", "userId", session.UserID(), "roomId", room.ID())
		return true, nil
	}

	if err := room.EndGame(); err != nil {
		slog.Warn("game end rejected", "roomId", room.ID(), "err", err)
		return true, nil
	}

	slog.Info("game ended", "roomId", room.ID(), "hostUserId", session.UserID())
	return true, nil
}

// handleFavorite applies write-through loadout/cosmetic edits. Success is
// silent: replying would desynchronize the client's sequence tracking.
func (h *Handler) handleFavorite(ctx context.Context, conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("favorite packet without session")
	}

	r := packet.NewReader(payload)
	subtype, err := r.ReadUint8()
	if err != nil {
		return true, fmt.Errorf("parsing favorite subtype: %w", err)
	}

	switch subtype {
	case clientpackets.InFavoriteSetLoadout:
		req, err := clientpackets.ParseFavoriteSetLoadout(r)
		if err != nil {
			return true, err
		}
		if err := h.inventory.SetLoadoutWeapon(ctx, session.UserID(), req.LoadoutNum, req.WeaponSlot, req.ItemID); err != nil {
			return true, fmt.Errorf("favorite loadout write: %w", err)
		}

	case clientpackets.InFavoriteSetCosmetics:
		req, err := clientpackets.ParseFavoriteSetCosmetics(r)
		if err != nil {
			return true, err
		}
		if err := h.inventory.SetCosmeticSlot(ctx, session.UserID(), req.Slot, req.ItemID); err != nil {
			return true, fmt.Errorf("favorite cosmetics write: %w", err)
		}

	default:
		slog.Warn("unknown favorite subtype", "subtype", subtype, "userId", session.UserID())
	}
	return true, nil
}

// handleOption applies write-through buy menu edits. Silent on success.
func (h *Handler) handleOption(ctx context.Context, conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("option packet without session")
	}

	r := packet.NewReader(payload)
	subtype, err := r.ReadUint8()
	if err != nil {
		return true, fmt.Errorf("parsing option subtype: %w", err)
	}

	switch subtype {
	case clientpackets.InOptionSetBuyMenu:
		req, err := clientpackets.ParseOptionSetBuyMenu(r)
		if err != nil {
			return true, err
		}
		if err := h.inventory.SetBuyMenuItem(ctx, session.UserID(), req.SubMenu, req.Slot, req.ItemID); err != nil {
			return true, fmt.Errorf("buy menu write: %w", err)
		}

	default:
		slog.Warn("unknown option subtype", "subtype", subtype, "userId", session.UserID())
	}
	return true, nil
}
