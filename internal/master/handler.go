package master

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/nslott/masterserver/internal/data"
	"github.com/nslott/masterserver/internal/lobby"
	"github.com/nslott/masterserver/internal/master/clientpackets"
	"github.com/nslott/masterserver/internal/master/serverpackets"
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/protocol"
)

// UserDirectory is the gateway surface the handlers need from the user
// service. Satisfied by gateway.UserService.
type UserDirectory interface {
	ValidateCredentials(ctx context.Context, username, password string) (uint32, error)
	GetUser(ctx context.Context, userID uint32) (*model.User, bool, error)
}

// InventoryDirectory is the gateway surface for inventory projections.
// Satisfied by gateway.InventoryService.
type InventoryDirectory interface {
	Items(ctx context.Context, userID uint32) ([]model.InventoryItem, bool, error)
	Cosmetics(ctx context.Context, userID uint32) (*model.Cosmetics, bool, error)
	Loadouts(ctx context.Context, userID uint32) ([]model.Loadout, bool, error)
	BuyMenu(ctx context.Context, userID uint32) (*model.BuyMenu, bool, error)
	SetLoadoutWeapon(ctx context.Context, userID uint32, loadoutNum, weaponSlot uint8, itemID uint32) error
	SetCosmeticSlot(ctx context.Context, userID uint32, slot uint8, itemID uint32) error
	SetBuyMenuItem(ctx context.Context, userID uint32, subMenu, slot uint8, itemID uint32) error
}

// Handler routes decoded frames to actions. One per server.
type Handler struct {
	users     UserDirectory
	inventory InventoryDirectory
	sessions  *SessionManager
	lobby     *lobby.Lobby

	holepunchPort uint16
}

// NewHandler creates the packet handler.
func NewHandler(users UserDirectory, inventory InventoryDirectory, sessions *SessionManager, lb *lobby.Lobby, holepunchPort uint16) *Handler {
	return &Handler{
		users:         users,
		inventory:     inventory,
		sessions:      sessions,
		lobby:         lb,
		holepunchPort: holepunchPort,
	}
}

// HandleFrame dispatches one inbound frame.
// Returns ok=false when the connection must close (protocol fatal); a
// non-nil error with ok=true is logged by the read loop and the frame is
// dropped.
func (h *Handler) HandleFrame(ctx context.Context, conn *Connection, f protocol.Frame) (bool, error) {
	switch conn.State() {
	case StateConnected:
		// Only the Version exchange is accepted before identification.
		if f.Type != protocol.PacketTypeVersion {
			return false, fmt.Errorf("packet %s before Version handshake", f.Type)
		}
		return h.handleVersion(conn, f.Payload)

	case StateIdentified:
		switch f.Type {
		case protocol.PacketTypeLogin:
			return h.handleLogin(ctx, conn, f.Payload)
		case protocol.PacketTypeHeartbeat:
			return true, nil
		default:
			return false, fmt.Errorf("packet %s before login", f.Type)
		}
	}

	// Authenticated.
	switch f.Type {
	case protocol.PacketTypeLogin:
		return false, fmt.Errorf("duplicate login on authenticated connection")
	case protocol.PacketTypeHeartbeat:
		return h.handleHeartbeat(conn)
	case protocol.PacketTypeRequestChannels:
		return h.handleRequestChannels(conn)
	case protocol.PacketTypeRequestRoomList:
		return h.handleRequestRoomList(conn, f.Payload)
	case protocol.PacketTypeRoom:
		return h.handleRoom(conn, f.Payload)
	case protocol.PacketTypeHost:
		return h.handleHost(ctx, conn, f.Payload)
	case protocol.PacketTypeFavorite:
		return h.handleFavorite(ctx, conn, f.Payload)
	case protocol.PacketTypeOption:
		return h.handleOption(ctx, conn, f.Payload)
	case protocol.PacketTypeChat:
		return h.handleChat(conn, f.Payload)
	case protocol.PacketTypeUdp:
		return h.handleUdp(conn, f.Payload)
	default:
		// Unknown opcodes are logged and dropped, never fatal.
		slog.Warn("unknown packet type", "type", f.Type, "conn", conn.ID(), "remote", conn.IP())
		return true, nil
	}
}

func (h *Handler) handleVersion(conn *Connection, payload []byte) (bool, error) {
	req, err := clientpackets.ParseVersion(payload)
	if err != nil {
		return false, err
	}

	conn.SetState(StateIdentified)
	slog.Debug("version handshake", "conn", conn.ID(), "build", req.Build, "beta", req.IsBeta)

	if err := conn.Send(protocol.PacketTypeVersionReply, serverpackets.VersionReply(true, "")); err != nil {
		return false, err
	}
	return true, nil
}

// handleLogin runs the full login path: credential check, session creation
// with the single-session rule, then the strict reply sequence the client
// depends on — UserStart, UserInfo, inventory items, cosmetics, unlock
// ledger, loadouts, buy menu, server list.
func (h *Handler) handleLogin(ctx context.Context, conn *Connection, payload []byte) (bool, error) {
	req, err := clientpackets.ParseLogin(payload)
	if err != nil {
		return false, err
	}

	userID, err := h.users.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		// Service outage behaves like bad credentials toward the client,
		// but is logged as the outage it is.
		slog.Error("credential validation failed", "err", err, "user", req.Username, "remote", conn.IP())
		return false, nil
	}
	if userID == 0 {
		slog.Warn("bad credentials", "user", req.Username, "remote", conn.IP())
		return false, nil
	}

	user, found, err := h.users.GetUser(ctx, userID)
	if err != nil || !found {
		slog.Error("user lookup failed after validation", "err", err, "userId", userID)
		return false, nil
	}

	session := model.NewSession(userID, user.UserName, net.ParseIP(conn.IP()))
	h.sessions.Store(session, conn)
	conn.BindOwner(userID)
	conn.SetState(StateAuthenticated)

	slog.Info("login", "userId", userID, "user", user.UserName, "conn", conn.ID(), "remote", conn.IP())

	if err := conn.Send(protocol.PacketTypeUserStart,
		serverpackets.UserStart(userID, user.UserName, user.PlayerName, h.holepunchPort)); err != nil {
		return false, err
	}
	if err := conn.Send(protocol.PacketTypeUserInfo, serverpackets.UserInfo(user)); err != nil {
		return false, err
	}
	if ok, err := h.sendInventory(ctx, conn, userID); !ok {
		return false, err
	}
	if err := conn.Send(protocol.PacketTypeServerList, serverpackets.ServerList(h.lobby.ServerListEntries())); err != nil {
		return false, err
	}
	return true, nil
}

// sendInventory emits the login inventory block in its observable order:
// items, cosmetics, unlock ledger, loadouts, buy menu. A projection the
// inventory service cannot produce is skipped, not fatal.
func (h *Handler) sendInventory(ctx context.Context, conn *Connection, userID uint32) (bool, error) {
	items, found, err := h.inventory.Items(ctx, userID)
	if err != nil {
		slog.Error("inventory items fetch failed", "err", err, "userId", userID)
	} else if found {
		if err := conn.Send(protocol.PacketTypeInventory, serverpackets.InventoryItems(items)); err != nil {
			return false, err
		}
	}

	cosmetics, found, err := h.inventory.Cosmetics(ctx, userID)
	if err != nil {
		slog.Error("cosmetics fetch failed", "err", err, "userId", userID)
	} else if found {
		if err := conn.Send(protocol.PacketTypeFavorite, serverpackets.FavoriteCosmetics(cosmetics)); err != nil {
			return false, err
		}
	}

	if err := conn.Send(protocol.PacketTypeUnlock, data.UnlockLedger); err != nil {
		return false, err
	}

	loadouts, found, err := h.inventory.Loadouts(ctx, userID)
	if err != nil {
		slog.Error("loadouts fetch failed", "err", err, "userId", userID)
	} else if found {
		if err := conn.Send(protocol.PacketTypeFavorite, serverpackets.FavoriteLoadouts(loadouts)); err != nil {
			return false, err
		}
	}

	buyMenu, found, err := h.inventory.BuyMenu(ctx, userID)
	if err != nil {
		slog.Error("buy menu fetch failed", "err", err, "userId", userID)
	} else if found {
		if err := conn.Send(protocol.PacketTypeOption, serverpackets.OptionBuyMenu(buyMenu)); err != nil {
			return false, err
		}
	}

	return true, nil
}

func (h *Handler) handleHeartbeat(conn *Connection) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return false, fmt.Errorf("heartbeat without session")
	}
	session.Heartbeat()
	return true, nil
}

func (h *Handler) handleRequestChannels(conn *Connection) (bool, error) {
	if err := conn.Send(protocol.PacketTypeServerList, serverpackets.ServerList(h.lobby.ServerListEntries())); err != nil {
		return false, err
	}
	return true, nil
}

// handleRequestRoomList moves the user's browsing position to a channel and
// sends its full room list. The connection becomes a browser of that
// channel until it browses elsewhere or disconnects.
func (h *Handler) handleRequestRoomList(conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("room list request without session")
	}

	req, err := clientpackets.ParseRequestRoomList(payload)
	if err != nil {
		return true, err
	}

	channel, ok := h.lobby.GetChannel(req.ChannelServerIndex, req.ChannelIndex)
	if !ok {
		return true, fmt.Errorf("unknown channel %d/%d", req.ChannelServerIndex, req.ChannelIndex)
	}

	if prev, ok := h.lobby.GetChannel(session.Channel()); ok && prev != channel {
		prev.RemoveBrowser(conn.ID())
	}
	session.SetChannel(req.ChannelServerIndex, req.ChannelIndex)
	channel.AddBrowser(conn.ID(), conn)

	if err := conn.Send(protocol.PacketTypeRoomList, serverpackets.RoomListFull(channel.ListEntries())); err != nil {
		return false, err
	}
	return true, nil
}

func (h *Handler) handleChat(conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("chat without session")
	}
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("chat outside a room")
	}

	req, err := clientpackets.ParseChat(payload)
	if err != nil {
		return true, err
	}

	room.BroadcastChat(session.UserID(), session.UserName(), req.Message)
	return true, nil
}

// handleUdp records the client's announced holepunch port and echoes the
// external address the server observes for it.
func (h *Handler) handleUdp(conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("udp handshake without session")
	}

	req, err := clientpackets.ParseUdp(payload)
	if err != nil {
		return true, err
	}

	session.SetExternalPort(req.LocalPort)
	ip, port := session.ExternalNet()

	if err := conn.Send(protocol.PacketTypeUdp, serverpackets.UdpReply(ip, port)); err != nil {
		return false, err
	}
	return true, nil
}
