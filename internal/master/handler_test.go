package master

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/nslott/masterserver/internal/lobby"
	"github.com/nslott/masterserver/internal/master/clientpackets"
	"github.com/nslott/masterserver/internal/master/serverpackets"
	"github.com/nslott/masterserver/internal/model"
	"github.com/nslott/masterserver/internal/packet"
	"github.com/nslott/masterserver/internal/protocol"
)

// MockUserDirectory is the UserDirectory mock for unit tests.
type MockUserDirectory struct {
	ValidateCredentialsFunc func(ctx context.Context, username, password string) (uint32, error)
	GetUserFunc             func(ctx context.Context, userID uint32) (*model.User, bool, error)
}

func (m *MockUserDirectory) ValidateCredentials(ctx context.Context, username, password string) (uint32, error) {
	if m.ValidateCredentialsFunc != nil {
		return m.ValidateCredentialsFunc(ctx, username, password)
	}
	return 7, nil
}

func (m *MockUserDirectory) GetUser(ctx context.Context, userID uint32) (*model.User, bool, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return &model.User{UserID: userID, UserName: "alice", PlayerName: "Alice", Level: 12}, true, nil
}

// MockInventoryDirectory is the InventoryDirectory mock for unit tests.
type MockInventoryDirectory struct {
	ItemsFunc            func(ctx context.Context, userID uint32) ([]model.InventoryItem, bool, error)
	CosmeticsFunc        func(ctx context.Context, userID uint32) (*model.Cosmetics, bool, error)
	LoadoutsFunc         func(ctx context.Context, userID uint32) ([]model.Loadout, bool, error)
	BuyMenuFunc          func(ctx context.Context, userID uint32) (*model.BuyMenu, bool, error)
	SetLoadoutWeaponFunc func(ctx context.Context, userID uint32, loadoutNum, weaponSlot uint8, itemID uint32) error
	SetCosmeticSlotFunc  func(ctx context.Context, userID uint32, slot uint8, itemID uint32) error
	SetBuyMenuItemFunc   func(ctx context.Context, userID uint32, subMenu, slot uint8, itemID uint32) error
}

func (m *MockInventoryDirectory) Items(ctx context.Context, userID uint32) ([]model.InventoryItem, bool, error) {
	if m.ItemsFunc != nil {
		return m.ItemsFunc(ctx, userID)
	}
	return []model.InventoryItem{{ItemID: 10, Count: 1}}, true, nil
}

func (m *MockInventoryDirectory) Cosmetics(ctx context.Context, userID uint32) (*model.Cosmetics, bool, error) {
	if m.CosmeticsFunc != nil {
		return m.CosmeticsFunc(ctx, userID)
	}
	return &model.Cosmetics{}, true, nil
}

func (m *MockInventoryDirectory) Loadouts(ctx context.Context, userID uint32) ([]model.Loadout, bool, error) {
	if m.LoadoutsFunc != nil {
		return m.LoadoutsFunc(ctx, userID)
	}
	return []model.Loadout{{LoadoutNum: 0}}, true, nil
}

func (m *MockInventoryDirectory) BuyMenu(ctx context.Context, userID uint32) (*model.BuyMenu, bool, error) {
	if m.BuyMenuFunc != nil {
		return m.BuyMenuFunc(ctx, userID)
	}
	return &model.BuyMenu{}, true, nil
}

func (m *MockInventoryDirectory) SetLoadoutWeapon(ctx context.Context, userID uint32, loadoutNum, weaponSlot uint8, itemID uint32) error {
	if m.SetLoadoutWeaponFunc != nil {
		return m.SetLoadoutWeaponFunc(ctx, userID, loadoutNum, weaponSlot, itemID)
	}
	return nil
}

func (m *MockInventoryDirectory) SetCosmeticSlot(ctx context.Context, userID uint32, slot uint8, itemID uint32) error {
	if m.SetCosmeticSlotFunc != nil {
		return m.SetCosmeticSlotFunc(ctx, userID, slot, itemID)
	}
	return nil
}

func (m *MockInventoryDirectory) SetBuyMenuItem(ctx context.Context, userID uint32, subMenu, slot uint8, itemID uint32) error {
	if m.SetBuyMenuItemFunc != nil {
		return m.SetBuyMenuItemFunc(ctx, userID, subMenu, slot, itemID)
	}
	return nil
}

type handlerEnv struct {
	handler   *Handler
	users     *MockUserDirectory
	inventory *MockInventoryDirectory
	sessions  *SessionManager
	lobby     *lobby.Lobby
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	users := &MockUserDirectory{}
	inventory := &MockInventoryDirectory{}
	sessions := NewSessionManager()
	lb := lobby.New([]*lobby.ChannelServer{
		lobby.NewChannelServer(0, "Master", []*lobby.Channel{
			lobby.NewChannel(0, "Channel 1"),
			lobby.NewChannel(1, "Channel 2"),
		}),
	})

	return &handlerEnv{
		handler:   NewHandler(users, inventory, sessions, lb, 30002),
		users:     users,
		inventory: inventory,
		sessions:  sessions,
		lobby:     lb,
	}
}

func frame(typ protocol.PacketType, payload []byte) protocol.Frame {
	return protocol.Frame{Type: typ, Payload: payload}
}

func versionPayload() []byte {
	w := packet.NewWriter(4)
	w.WriteUint8(0)
	w.WriteUint16(1234)
	return w.Bytes()
}

func loginPayload(username, password string) []byte {
	w := packet.NewWriter(32)
	w.WriteString(username)
	w.WriteString(password)
	return w.Bytes()
}

// authenticate builds an authenticated connection with a stored session,
// bypassing the wire handshake.
func (e *handlerEnv) authenticate(t *testing.T, userID uint32, name string) (*Connection, net.Conn, *model.Session) {
	t.Helper()

	conn, client := newConnPair(t)
	session := model.NewSession(userID, name, net.IPv4(127, 0, 0, 1))
	e.sessions.Store(session, conn)
	conn.BindOwner(userID)
	conn.SetState(StateAuthenticated)
	return conn, client, session
}

// joinNewRoom puts an authenticated user into a fresh room of channel 0/0.
func (e *handlerEnv) joinNewRoom(t *testing.T, conn *Connection, session *model.Session) *lobby.Room {
	t.Helper()

	channel, ok := e.lobby.GetChannel(0, 0)
	if !ok {
		t.Fatal("channel 0/0 missing")
	}
	ip, port := session.ExternalNet()
	room := channel.CreateRoom("", model.DefaultRoomSettings(), &lobby.Member{
		UserID:       session.UserID(),
		UserName:     session.UserName(),
		ExternalIP:   ip,
		ExternalPort: port,
		Conn:         conn,
	})
	session.SetCurrentRoomID(room.ID())
	conn.SetRoom(room)
	return room
}

func (e *handlerEnv) joinExistingRoom(t *testing.T, room *lobby.Room, conn *Connection, session *model.Session) {
	t.Helper()

	ip, port := session.ExternalNet()
	if err := room.AddUser(&lobby.Member{
		UserID:       session.UserID(),
		UserName:     session.UserName(),
		ExternalIP:   ip,
		ExternalPort: port,
		Conn:         conn,
	}); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	session.SetCurrentRoomID(room.ID())
	conn.SetRoom(room)
}

func TestHandler_RejectsPacketBeforeVersion(t *testing.T) {
	env := newHandlerEnv(t)
	conn, _ := newConnPair(t)

	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeLogin, loginPayload("alice", "secret")))
	if ok || err == nil {
		t.Errorf("HandleFrame = %v, %v; want fatal", ok, err)
	}
}

func TestHandler_VersionHandshake(t *testing.T) {
	env := newHandlerEnv(t)
	conn, client := newConnPair(t)

	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeVersion, versionPayload()))
	if !ok || err != nil {
		t.Fatalf("HandleFrame = %v, %v", ok, err)
	}
	if conn.State() != StateIdentified {
		t.Errorf("State = %v, want IDENTIFIED", conn.State())
	}

	reply := readFrame(t, client)
	if reply.Type != protocol.PacketTypeVersionReply {
		t.Errorf("reply type = %v, want VersionReply", reply.Type)
	}
	if reply.Sequence != 0 {
		t.Errorf("reply sequence = %d, want 0", reply.Sequence)
	}
	if reply.Payload[0] != 1 {
		t.Errorf("success flag = %d, want 1", reply.Payload[0])
	}
}

func TestHandler_Login_ReplySequence(t *testing.T) {
	env := newHandlerEnv(t)
	conn, client := newConnPair(t)

	if ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeVersion, versionPayload())); !ok || err != nil {
		t.Fatalf("version: %v, %v", ok, err)
	}
	if ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeLogin, loginPayload("alice", "secret"))); !ok || err != nil {
		t.Fatalf("login: %v, %v", ok, err)
	}

	if conn.State() != StateAuthenticated {
		t.Errorf("State = %v, want AUTHENTICATED", conn.State())
	}
	if conn.OwnerID() != 7 {
		t.Errorf("OwnerID = %d, want 7", conn.OwnerID())
	}
	if _, ok := env.sessions.Get(7); !ok {
		t.Error("session not stored")
	}

	// The client depends on this exact reply order.
	wantTypes := []protocol.PacketType{
		protocol.PacketTypeVersionReply,
		protocol.PacketTypeUserStart,
		protocol.PacketTypeUserInfo,
		protocol.PacketTypeInventory,
		protocol.PacketTypeFavorite, // cosmetics
		protocol.PacketTypeUnlock,
		protocol.PacketTypeFavorite, // loadouts
		protocol.PacketTypeOption,
		protocol.PacketTypeServerList,
	}
	for i, want := range wantTypes {
		got := readFrame(t, client)
		if got.Type != want {
			t.Fatalf("frame %d type = %v, want %v", i, got.Type, want)
		}
		if got.Sequence != byte(i) {
			t.Errorf("frame %d sequence = %d, want %d", i, got.Sequence, i)
		}
	}
}

func TestHandler_Login_SkipsMissingProjections(t *testing.T) {
	env := newHandlerEnv(t)
	env.inventory.ItemsFunc = func(ctx context.Context, userID uint32) ([]model.InventoryItem, bool, error) {
		return nil, false, nil
	}
	env.inventory.BuyMenuFunc = func(ctx context.Context, userID uint32) (*model.BuyMenu, bool, error) {
		return nil, false, errors.New("temporarily unavailable")
	}

	conn, client := newConnPair(t)
	if ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeVersion, versionPayload())); !ok || err != nil {
		t.Fatalf("version: %v, %v", ok, err)
	}
	if ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeLogin, loginPayload("alice", "secret"))); !ok || err != nil {
		t.Fatalf("login: %v, %v", ok, err)
	}

	// Items and buy menu are absent; the rest of the sequence holds.
	wantTypes := []protocol.PacketType{
		protocol.PacketTypeVersionReply,
		protocol.PacketTypeUserStart,
		protocol.PacketTypeUserInfo,
		protocol.PacketTypeFavorite, // cosmetics
		protocol.PacketTypeUnlock,
		protocol.PacketTypeFavorite, // loadouts
		protocol.PacketTypeServerList,
	}
	for i, want := range wantTypes {
		got := readFrame(t, client)
		if got.Type != want {
			t.Fatalf("frame %d type = %v, want %v", i, got.Type, want)
		}
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	env := newHandlerEnv(t)
	env.users.ValidateCredentialsFunc = func(ctx context.Context, username, password string) (uint32, error) {
		return 0, nil
	}

	conn, _ := newConnPair(t)
	if ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeVersion, versionPayload())); !ok || err != nil {
		t.Fatalf("version: %v, %v", ok, err)
	}

	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeLogin, loginPayload("alice", "wrong")))
	if ok {
		t.Errorf("HandleFrame = %v, %v; bad credentials must close", ok, err)
	}
	if env.sessions.Count() != 0 {
		t.Error("no session may exist after a failed login")
	}
}

func TestHandler_Login_ServiceOutage(t *testing.T) {
	env := newHandlerEnv(t)
	env.users.ValidateCredentialsFunc = func(ctx context.Context, username, password string) (uint32, error) {
		return 0, errors.New("userservice is down")
	}

	conn, _ := newConnPair(t)
	if ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeVersion, versionPayload())); !ok || err != nil {
		t.Fatalf("version: %v, %v", ok, err)
	}

	if ok, _ := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeLogin, loginPayload("alice", "secret"))); ok {
		t.Error("outage during login must close the connection")
	}
}

func TestHandler_DuplicateLoginPacket(t *testing.T) {
	env := newHandlerEnv(t)
	conn, _, _ := env.authenticate(t, 7, "alice")

	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeLogin, loginPayload("alice", "secret")))
	if ok || err == nil {
		t.Errorf("HandleFrame = %v, %v; duplicate login must be fatal", ok, err)
	}
}

func TestHandler_Heartbeat(t *testing.T) {
	env := newHandlerEnv(t)
	conn, _, session := env.authenticate(t, 7, "alice")

	before := session.LastHeartbeat()
	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeHeartbeat, nil))
	if !ok || err != nil {
		t.Fatalf("HandleFrame = %v, %v", ok, err)
	}
	if session.LastHeartbeat().Before(before) {
		t.Error("heartbeat timestamp not refreshed")
	}
}

func TestHandler_UnknownTypeDropped(t *testing.T) {
	env := newHandlerEnv(t)
	conn, _, _ := env.authenticate(t, 7, "alice")

	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketType(0xC8), []byte{1, 2, 3}))
	if !ok || err != nil {
		t.Errorf("HandleFrame = %v, %v; unknown opcodes are dropped, not fatal", ok, err)
	}
}

func TestHandler_RequestRoomList_RegistersBrowser(t *testing.T) {
	env := newHandlerEnv(t)
	conn, client, session := env.authenticate(t, 7, "alice")

	w := packet.NewWriter(2)
	w.WriteUint8(0)
	w.WriteUint8(1)
	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeRequestRoomList, w.Bytes()))
	if !ok || err != nil {
		t.Fatalf("HandleFrame = %v, %v", ok, err)
	}

	reply := readFrame(t, client)
	if reply.Type != protocol.PacketTypeRoomList {
		t.Fatalf("reply type = %v, want RoomList", reply.Type)
	}
	if reply.Payload[0] != serverpackets.OutRoomListFull {
		t.Errorf("subtype = %d, want RoomListFull", reply.Payload[0])
	}
	if si, ci := session.Channel(); si != 0 || ci != 1 {
		t.Errorf("session channel = %d/%d, want 0/1", si, ci)
	}

	// As a browser of channel 0/1 the connection now gets push updates.
	hostConn, _, hostSession := env.authenticate(t, 8, "bob")
	hostSession.SetChannel(0, 1)
	channel, _ := env.lobby.GetChannel(0, 1)
	channel.CreateRoom("", model.DefaultRoomSettings(), &lobby.Member{
		UserID: 8, UserName: "bob", Conn: hostConn,
	})

	push := readFrame(t, client)
	if push.Type != protocol.PacketTypeRoomList || push.Payload[0] != serverpackets.OutRoomListAdd {
		t.Errorf("push = %v subtype %d, want RoomList/Add", push.Type, push.Payload[0])
	}
}

func TestHandler_NewRoomViaFrame(t *testing.T) {
	env := newHandlerEnv(t)
	conn, client, session := env.authenticate(t, 7, "alice")

	w := packet.NewWriter(32)
	w.WriteUint8(clientpackets.InRoomNewRoom)
	w.WriteString("my room")
	w.WriteUint8(2)   // game mode
	w.WriteUint8(4)   // map
	w.WriteUint8(0)   // win limit → default
	w.WriteUint16(0)  // kill limit → default
	w.WriteUint16(0)  // start money → default
	w.WriteUint8(1)   // bots on
	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeRoom, w.Bytes()))
	if !ok || err != nil {
		t.Fatalf("HandleFrame = %v, %v", ok, err)
	}

	room := conn.Room()
	if room == nil {
		t.Fatal("connection not bound to the new room")
	}
	if room.Name() != "my room" {
		t.Errorf("Name = %q", room.Name())
	}
	settings := room.Settings()
	if settings.GameModeID != 2 || settings.MapID != 4 {
		t.Errorf("settings = %+v, want mode 2 map 4", settings)
	}
	if settings.WinLimit != 10 || settings.KillLimit != 150 || settings.StartMoney != 16000 {
		t.Errorf("zeroed options must take defaults, got %+v", settings)
	}
	if room.MaxPlayers() != lobby.MaxPlayersWithBots {
		t.Errorf("MaxPlayers = %d, want %d", room.MaxPlayers(), lobby.MaxPlayersWithBots)
	}
	if session.CurrentRoomID() != room.ID() {
		t.Errorf("session room = %d, want %d", session.CurrentRoomID(), room.ID())
	}

	state := readFrame(t, client)
	if state.Type != protocol.PacketTypeRoom || state.Payload[0] != serverpackets.OutRoomCreateAndJoin {
		t.Errorf("state frame = %v subtype %d", state.Type, state.Payload[0])
	}
}

func TestHandler_HostRelay_Authorization(t *testing.T) {
	env := newHandlerEnv(t)

	var inventoryCalls int
	env.inventory.ItemsFunc = func(ctx context.Context, userID uint32) ([]model.InventoryItem, bool, error) {
		inventoryCalls++
		return []model.InventoryItem{{ItemID: 10, Count: 1}}, true, nil
	}

	hostConn, hostClient, hostSession := env.authenticate(t, 1, "host")
	memberConn, _, memberSession := env.authenticate(t, 2, "member")
	strangerConn, _, _ := env.authenticate(t, 3, "stranger")

	room := env.joinNewRoom(t, hostConn, hostSession)
	env.joinExistingRoom(t, room, memberConn, memberSession)
	readFrame(t, hostClient) // drain the room state frame

	relay := func(conn *Connection, target uint32) (bool, error) {
		w := packet.NewWriter(8)
		w.WriteUint8(clientpackets.InHostSetInventory)
		w.WriteUint32(target)
		return env.handler.HandleFrame(context.Background(), conn, frame(protocol.PacketTypeHost, w.Bytes()))
	}

	// Requester outside any room: dropped, socket kept, no gateway call.
	if ok, err := relay(strangerConn, 2); !ok || err != nil {
		t.Errorf("stranger relay = %v, %v; want silent drop", ok, err)
	}
	// Requester in the room but not host.
	if ok, err := relay(memberConn, 1); !ok || err != nil {
		t.Errorf("non-host relay = %v, %v; want silent drop", ok, err)
	}
	// Target not in the host's room.
	if ok, err := relay(hostConn, 3); !ok || err != nil {
		t.Errorf("outside-target relay = %v, %v; want silent drop", ok, err)
	}
	// Target without a session.
	if ok, err := relay(hostConn, 99); !ok || err != nil {
		t.Errorf("sessionless-target relay = %v, %v; want silent drop", ok, err)
	}
	if inventoryCalls != 0 {
		t.Fatalf("gateway called %d times by denied relays", inventoryCalls)
	}

	// The full chain holds: the projection reaches the host.
	if ok, err := relay(hostConn, 2); !ok || err != nil {
		t.Fatalf("authorized relay = %v, %v", ok, err)
	}
	if inventoryCalls != 1 {
		t.Errorf("gateway calls = %d, want 1", inventoryCalls)
	}

	reply := readFrame(t, hostClient)
	if reply.Type != protocol.PacketTypeHost || reply.Payload[0] != serverpackets.OutHostSetInventory {
		t.Errorf("reply = %v subtype %d, want Host/SetInventory", reply.Type, reply.Payload[0])
	}
}

func TestHandler_GameEnd_HostOnly(t *testing.T) {
	env := newHandlerEnv(t)

	hostConn, _, hostSession := env.authenticate(t, 1, "host")
	memberConn, _, memberSession := env.authenticate(t, 2, "member")
	room := env.joinNewRoom(t, hostConn, hostSession)
	env.joinExistingRoom(t, room, memberConn, memberSession)

	if _, err := room.ToggleReady(2); err != nil {
		t.Fatal(err)
	}
	if err := room.StartGame(1); err != nil {
		t.Fatal(err)
	}

	gameEnd := func(conn *Connection) (bool, error) {
		return env.handler.HandleFrame(context.Background(), conn,
			frame(protocol.PacketTypeHost, []byte{clientpackets.InHostGameEnd}))
	}

	// A member cannot end the match.
	if ok, err := gameEnd(memberConn); !ok || err != nil {
		t.Errorf("member game end = %v, %v; want silent drop", ok, err)
	}
	if !room.InGame() {
		t.Fatal("match ended by non-host")
	}

	if ok, err := gameEnd(hostConn); !ok || err != nil {
		t.Fatalf("host game end = %v, %v", ok, err)
	}
	if room.InGame() {
		t.Error("match still running after host game end")
	}
}

func TestHandler_Favorite_WriteThrough(t *testing.T) {
	env := newHandlerEnv(t)
	conn, _, _ := env.authenticate(t, 7, "alice")

	var got struct {
		userID           uint32
		loadoutNum, slot uint8
		itemID           uint32
	}
	env.inventory.SetLoadoutWeaponFunc = func(ctx context.Context, userID uint32, loadoutNum, weaponSlot uint8, itemID uint32) error {
		got.userID, got.loadoutNum, got.slot, got.itemID = userID, loadoutNum, weaponSlot, itemID
		return nil
	}

	w := packet.NewWriter(8)
	w.WriteUint8(clientpackets.InFavoriteSetLoadout)
	w.WriteUint8(2)
	w.WriteUint8(3)
	w.WriteUint32(5005)
	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeFavorite, w.Bytes()))
	if !ok || err != nil {
		t.Fatalf("HandleFrame = %v, %v", ok, err)
	}

	if got.userID != 7 || got.loadoutNum != 2 || got.slot != 3 || got.itemID != 5005 {
		t.Errorf("write-through args = %+v", got)
	}
	// Success is silent: no reply frame may be sent.
	if conn.Sequence() != 0 {
		t.Errorf("Sequence = %d, want 0 (no reply on success)", conn.Sequence())
	}
}

func TestHandler_Udp_EchoesExternalAddress(t *testing.T) {
	env := newHandlerEnv(t)
	conn, client, session := env.authenticate(t, 7, "alice")

	w := packet.NewWriter(2)
	w.WriteUint16(40123)
	ok, err := env.handler.HandleFrame(context.Background(),
		conn, frame(protocol.PacketTypeUdp, w.Bytes()))
	if !ok || err != nil {
		t.Fatalf("HandleFrame = %v, %v", ok, err)
	}

	_, port := session.ExternalNet()
	if port != 40123 {
		t.Errorf("session port = %d, want 40123", port)
	}

	reply := readFrame(t, client)
	if reply.Type != protocol.PacketTypeUdp {
		t.Errorf("reply type = %v, want Udp", reply.Type)
	}
}
