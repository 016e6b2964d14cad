package master

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/nslott/masterserver/internal/lobby"
	"github.com/nslott/masterserver/internal/protocol"
)

const (
	// DefaultLoginTimeout bounds the Version+Login handshake.
	DefaultLoginTimeout = 10 * time.Second
	// DefaultHeartbeatTimeout is the idle bound after authentication.
	DefaultHeartbeatTimeout = 60 * time.Second
)

// ServerConfig tunes the TCP lobby server.
type ServerConfig struct {
	BindAddress      string
	Port             int
	LogPackets       bool
	LoginTimeout     time.Duration
	HeartbeatTimeout time.Duration
}

// Server accepts client connections on the master port and drives one read
// loop per connection.
type Server struct {
	cfg      ServerConfig
	handler  *Handler
	sessions *SessionManager
	lobby    *lobby.Lobby

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates the master server.
func NewServer(cfg ServerConfig, handler *Handler, sessions *SessionManager, lb *lobby.Lobby) *Server {
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = DefaultLoginTimeout
	}
	if cfg.HeartbeatTimeout <= 0 {
		cfg.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	return &Server{
		cfg:      cfg,
		handler:  handler,
		sessions: sessions,
		lobby:    lb,
	}
}

// Addr returns the listen address, nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from a ready listener. Split out for tests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("master server started", "address", ln.Addr())

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			slog.Error("failed to accept connection", "err", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	wg.Wait()
	return nil
}

func (s *Server) handleConnection(ctx context.Context, netConn net.Conn) {
	defer netConn.Close()

	conn, err := NewConnection(netConn, s.cfg.LogPackets)
	if err != nil {
		slog.Error("failed to wrap connection", "err", err, "remote", netConn.RemoteAddr())
		return
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.CloseAsync()
		case <-done:
		}
	}()

	slog.Info("new connection", "conn", conn.ID(), "remote", conn.IP())
	defer s.teardown(conn)

	for {
		deadline := s.cfg.LoginTimeout
		if conn.State() == StateAuthenticated {
			deadline = s.cfg.HeartbeatTimeout
		}
		if err := netConn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			return
		}

		frame, err := protocol.ReadFrame(netConn)
		if err != nil {
			slog.Debug("connection read ended", "conn", conn.ID(), "err", err)
			return
		}

		if s.cfg.LogPackets {
			slog.Debug("inbound frame",
				"conn", conn.ID(), "type", frame.Type, "seq", frame.Sequence,
				"body", hex.EncodeToString(frame.Payload))
		}

		ok, err := s.handler.HandleFrame(ctx, conn, frame)
		if err != nil {
			slog.Warn("packet handling failed",
				"conn", conn.ID(), "type", frame.Type, "err", err)
		}
		if !ok {
			return
		}
	}
}

// teardown runs "user left" processing after the read loop exits: the
// session is removed, channel browsing ends and room membership flows
// through removal (host election, empty-room deletion).
func (s *Server) teardown(conn *Connection) {
	conn.SetState(StateClosed)
	conn.CloseAsync()

	userID := conn.OwnerID()
	if userID == 0 {
		slog.Debug("connection closed", "conn", conn.ID())
		return
	}

	if session, ok := s.sessions.Get(userID); ok {
		if channel, ok := s.lobby.GetChannel(session.Channel()); ok {
			channel.RemoveBrowser(conn.ID())
		}
	}

	if room := conn.Room(); room != nil {
		room.RemoveUser(userID)
		conn.SetRoom(nil)
	}

	s.sessions.Remove(userID, conn)
	slog.Info("user disconnected", "conn", conn.ID(), "userId", userID)
}
