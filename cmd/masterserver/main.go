package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/nslott/masterserver/internal/config"
	"github.com/nslott/masterserver/internal/gateway"
	"github.com/nslott/masterserver/internal/lobby"
	"github.com/nslott/masterserver/internal/master"
)

// Exit codes: 0 normal shutdown, 1 misconfiguration, 2 fatal runtime error.
const (
	exitMisconfigured = 1
	exitRuntime       = 2
)

var errMisconfigured = errors.New("misconfigured")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		if errors.Is(err, errMisconfigured) {
			os.Exit(exitMisconfigured)
		}
		os.Exit(exitRuntime)
	}
}

func parseFlags() (config.Config, string, error) {
	var cfg config.Config
	var layoutPath string

	flag.StringVar(&cfg.BindAddress, "i", "", "bind address (default: auto-detect)")
	flag.StringVar(&cfg.BindAddress, "ip-address", "", "bind address (default: auto-detect)")
	flag.IntVar(&cfg.MasterPort, "p", config.DefaultMasterPort, "TCP master port")
	flag.IntVar(&cfg.MasterPort, "port-master", config.DefaultMasterPort, "TCP master port")
	flag.IntVar(&cfg.HolepunchPort, "P", config.DefaultHolepunchPort, "UDP holepunch port")
	flag.IntVar(&cfg.HolepunchPort, "port-holepunch", config.DefaultHolepunchPort, "UDP holepunch port")
	flag.BoolVar(&cfg.LogPackets, "l", false, "log inbound and outbound frames in hex")
	flag.BoolVar(&cfg.LogPackets, "log-packets", false, "log inbound and outbound frames in hex")
	flag.StringVar(&layoutPath, "c", "", "lobby layout YAML file")
	flag.StringVar(&layoutPath, "config", "", "lobby layout YAML file")
	flag.Parse()

	if cfg.BindAddress == "" {
		ip, err := config.DetectBindIP(os.Stdin, os.Stdout)
		if err != nil {
			return cfg, layoutPath, fmt.Errorf("detecting bind address: %w", err)
		}
		cfg.BindAddress = ip
	}
	return cfg, layoutPath, nil
}

func buildLobby(layout config.Layout) *lobby.Lobby {
	servers := make([]*lobby.ChannelServer, 0, len(layout.ChannelServers))
	for si, srv := range layout.ChannelServers {
		channels := make([]*lobby.Channel, 0, len(srv.Channels))
		for ci, name := range srv.Channels {
			channels = append(channels, lobby.NewChannel(uint8(ci), name))
		}
		servers = append(servers, lobby.NewChannelServer(uint8(si), srv.Name, channels))
	}
	return lobby.New(servers)
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	slog.Info("master server starting")

	// A local .env complements the process environment during development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env", "err", err)
	}

	cfg, layoutPath, err := parseFlags()
	if err != nil {
		return fmt.Errorf("%w: %v", errMisconfigured, err)
	}

	cfg.UserService, cfg.InvService, err = config.ServicesFromEnv()
	if err != nil {
		return fmt.Errorf("%w: %v", errMisconfigured, err)
	}

	cfg.Layout = config.DefaultLayout()
	if layoutPath != "" {
		cfg.Layout, err = config.LoadLayout(layoutPath)
		if err != nil {
			return fmt.Errorf("%w: %v", errMisconfigured, err)
		}
	}

	slog.Info("config loaded",
		"bind", cfg.BindAddress,
		"masterPort", cfg.MasterPort,
		"holepunchPort", cfg.HolepunchPort,
		"userService", cfg.UserService.URL(),
		"invService", cfg.InvService.URL())

	users := gateway.NewUserService(cfg.UserService.URL())
	inventory := gateway.NewInventoryService(cfg.InvService.URL())

	sessions := master.NewSessionManager()
	lobbyTree := buildLobby(cfg.Layout)
	handler := master.NewHandler(users, inventory, sessions, lobbyTree, uint16(cfg.HolepunchPort))

	server := master.NewServer(master.ServerConfig{
		BindAddress: cfg.BindAddress,
		Port:        cfg.MasterPort,
		LogPackets:  cfg.LogPackets,
	}, handler, sessions, lobbyTree)

	holepunch := master.NewHolepunch(cfg.BindAddress, cfg.HolepunchPort)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users.Run(gctx)
		return nil
	})
	g.Go(func() error {
		inventory.Run(gctx)
		return nil
	})
	g.Go(func() error {
		if err := server.Run(gctx); err != nil {
			return fmt.Errorf("master server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := holepunch.Run(gctx); err != nil {
			return fmt.Errorf("holepunch endpoint: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
