package lobby

import "github.com/nslott/masterserver/internal/master/serverpackets"

// ChannelServer is a named, ordered group of channels; the root of the
// lobby tree advertised to clients on login.
type ChannelServer struct {
	id       uint8
	name     string
	channels []*Channel
}

// NewChannelServer creates a channel server with the given channels.
func NewChannelServer(id uint8, name string, channels []*Channel) *ChannelServer {
	return &ChannelServer{id: id, name: name, channels: channels}
}

// ID returns the server id.
func (s *ChannelServer) ID() uint8 {
	return s.id
}

// Name returns the server name.
func (s *ChannelServer) Name() string {
	return s.name
}

// Channels returns the ordered channel list.
func (s *ChannelServer) Channels() []*Channel {
	return s.channels
}

// Lobby is the process-wide lobby tree.
type Lobby struct {
	servers []*ChannelServer
}

// New creates the lobby tree from an ordered server list.
func New(servers []*ChannelServer) *Lobby {
	return &Lobby{servers: servers}
}

// Servers returns the ordered channel-server list.
func (l *Lobby) Servers() []*ChannelServer {
	return l.servers
}

// GetChannel resolves a (serverIndex, channelIndex) pair.
func (l *Lobby) GetChannel(serverIndex, channelIndex uint8) (*Channel, bool) {
	if int(serverIndex) >= len(l.servers) {
		return nil, false
	}
	channels := l.servers[serverIndex].Channels()
	if int(channelIndex) >= len(channels) {
		return nil, false
	}
	return channels[channelIndex], true
}

// ServerListEntries returns the wire view of the whole tree.
func (l *Lobby) ServerListEntries() []serverpackets.ChannelServerEntry {
	entries := make([]serverpackets.ChannelServerEntry, 0, len(l.servers))
	for _, srv := range l.servers {
		entry := serverpackets.ChannelServerEntry{
			ID:   srv.ID(),
			Name: srv.Name(),
		}
		for _, ch := range srv.Channels() {
			entry.Channels = append(entry.Channels, serverpackets.ChannelEntry{
				ID:        ch.ID(),
				Name:      ch.Name(),
				RoomCount: uint16(ch.RoomCount()),
			})
		}
		entries = append(entries, entry)
	}
	return entries
}
