package master

import (
	"fmt"
	"log/slog"

	"github.com/nslott/masterserver/internal/lobby"
	"github.com/nslott/masterserver/internal/master/clientpackets"
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
)

// handleRoom dispatches Room subtypes. Authorization failures are logged
// and dropped; only parse failures on the subtype byte are surfaced.
func (h *Handler) handleRoom(conn *Connection, payload []byte) (bool, error) {
	session, ok := h.sessions.Get(conn.OwnerID())
	if !ok {
		return true, fmt.Errorf("room packet without session")
	}

	r := packet.NewReader(payload)
	subtype, err := r.ReadUint8()
	if err != nil {
		return true, fmt.Errorf("parsing room subtype: %w", err)
	}

	switch subtype {
	case clientpackets.InRoomNewRoom:
		return h.handleNewRoom(conn, session, r)
	case clientpackets.InRoomJoinRoom:
		return h.handleJoinRoom(conn, session, r)
	case clientpackets.InRoomLeaveRoom:
		return h.handleLeaveRoom(conn, session)
	case clientpackets.InRoomToggleReady:
		return h.handleToggleReady(conn, session)
	case clientpackets.InRoomGameStart:
		return h.handleGameStart(conn, session)
	case clientpackets.InRoomUpdateSettings:
		return h.handleUpdateSettings(conn, session, r)
	case clientpackets.InRoomSetUserTeam:
		return h.handleSetUserTeam(conn, session, r)
	case clientpackets.InRoomCountdown:
		return h.handleCountdown(conn, session, r)
	case clientpackets.InRoomConnectionFailure:
		return h.handleConnectionFailure(conn, session)
	default:
		slog.Warn("unknown room subtype", "subtype", subtype, "userId", session.UserID())
		return true, nil
	}
}

func (h *Handler) handleNewRoom(conn *Connection, session *model.Session, r *packet.Reader) (bool, error) {
	if session.IsInRoom() {
		return true, fmt.Errorf("user %d already in room %d", session.UserID(), session.CurrentRoomID())
	}

	req, err := clientpackets.ParseNewRoom(r)
	if err != nil {
		return true, err
	}

	channel, ok := h.lobby.GetChannel(session.Channel())
	if !ok {
		return true, fmt.Errorf("user %d not in a channel", session.UserID())
	}

	settings := model.DefaultRoomSettings()
	settings.GameModeID = req.GameModeID
	settings.MapID = req.MapID
	if req.WinLimit != 0 {
		settings.WinLimit = req.WinLimit
	}
	if req.KillLimit != 0 {
		settings.KillLimit = req.KillLimit
	}
	if req.StartMoney != 0 {
		settings.StartMoney = req.StartMoney
	}
	if req.EnableBots {
		settings.EnableBots = 1
	}

	room := channel.CreateRoom(req.Name, settings, h.roomMember(conn, session))
	session.SetCurrentRoomID(room.ID())
	conn.SetRoom(room)

	slog.Info("room created", "roomId", room.ID(), "name", room.Name(), "hostUserId", session.UserID())
	return true, nil
}

func (h *Handler) handleJoinRoom(conn *Connection, session *model.Session, r *packet.Reader) (bool, error) {
	if session.IsInRoom() {
		return true, fmt.Errorf("user %d already in room %d", session.UserID(), session.CurrentRoomID())
	}

	req, err := clientpackets.ParseJoinRoom(r)
	if err != nil {
		return true, err
	}

	channel, ok := h.lobby.GetChannel(session.Channel())
	if !ok {
		return true, fmt.Errorf("user %d not in a channel", session.UserID())
	}
	room, ok := channel.GetRoom(req.RoomID)
	if !ok {
		return true, fmt.Errorf("room %d not found", req.RoomID)
	}

	if err := room.AddUser(h.roomMember(conn, session)); err != nil {
		return true, fmt.Errorf("joining room %d: %w", req.RoomID, err)
	}
	session.SetCurrentRoomID(room.ID())
	conn.SetRoom(room)

	slog.Debug("room joined", "roomId", room.ID(), "userId", session.UserID())
	return true, nil
}

func (h *Handler) handleLeaveRoom(conn *Connection, session *model.Session) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("leave without a room")
	}

	room.RemoveUser(session.UserID())
	session.SetCurrentRoomID(0)
	conn.SetRoom(nil)

	slog.Debug("room left", "roomId", room.ID(), "userId", session.UserID())
	return true, nil
}

func (h *Handler) handleToggleReady(conn *Connection, session *model.Session) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("toggle ready without a room")
	}

	if _, err := room.ToggleReady(session.UserID()); err != nil {
		return true, fmt.Errorf("toggling ready: %w", err)
	}
	return true, nil
}

func (h *Handler) handleGameStart(conn *Connection, session *model.Session) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("game start without a room")
	}

	if err := room.StartGame(session.UserID()); err != nil {
		slog.Warn("game start rejected", "roomId", room.ID(), "userId", session.UserID(), "err", err)
		return true, nil
	}

	slog.Info("game started", "roomId", room.ID(), "hostUserId", session.UserID())
	return true, nil
}

func (h *Handler) handleUpdateSettings(conn *Connection, session *model.Session, r *packet.Reader) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("settings update without a room")
	}

	diff, err := clientpackets.ParseUpdateSettings(r)
	if err != nil {
		return true, err
	}

	if err := room.UpdateSettings(session.UserID(), diff); err != nil {
		slog.Warn("settings update rejected", "roomId", room.ID(), "userId", session.UserID(), "err", err)
		return true, nil
	}
	return true, nil
}

func (h *Handler) handleSetUserTeam(conn *Connection, session *model.Session, r *packet.Reader) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("team change without a room")
	}

	req, err := clientpackets.ParseSetUserTeam(r)
	if err != nil {
		return true, err
	}

	if err := room.SetUserTeam(session.UserID(), req.UserID, req.Team); err != nil {
		slog.Warn("team change rejected", "roomId", room.ID(), "userId", session.UserID(), "err", err)
		return true, nil
	}
	return true, nil
}

func (h *Handler) handleCountdown(conn *Connection, session *model.Session, r *packet.Reader) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("countdown without a room")
	}

	req, err := clientpackets.ParseCountdown(r)
	if err != nil {
		return true, err
	}

	if req.Stop {
		err = room.StopCountdown(session.UserID())
	} else {
		err = room.ProgressCountdown(session.UserID(), req.Count)
	}
	if err != nil {
		slog.Warn("countdown rejected", "roomId", room.ID(), "userId", session.UserID(), "err", err)
	}
	return true, nil
}

// handleConnectionFailure returns a member that could not reach the elected
// host back to lobby state.
func (h *Handler) handleConnectionFailure(conn *Connection, session *model.Session) (bool, error) {
	room := conn.Room()
	if room == nil {
		return true, fmt.Errorf("connection failure report without a room")
	}

	if err := room.ResetMember(session.UserID()); err != nil {
		return true, fmt.Errorf("resetting member: %w", err)
	}
	slog.Warn("member reported host unreachable", "roomId", room.ID(), "userId", session.UserID())
	return true, nil
}

func (h *Handler) roomMember(conn *Connection, session *model.Session) *lobby.Member {
	ip, port := session.ExternalNet()
	return &lobby.Member{
		UserID:       session.UserID(),
		UserName:     session.UserName(),
		Team:         model.TeamUnassigned,
		Status:       model.StatusNotReady,
		ExternalIP:   ip,
		ExternalPort: port,
		Conn:         conn,
	}
}
