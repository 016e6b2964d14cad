package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default ports for the two listeners.
const (
	DefaultMasterPort    = 30001
	DefaultHolepunchPort = 30002
)

// Required environment variables naming the external services.
const (
	EnvUserServiceHost = "USERSERVICE_HOST"
	EnvUserServicePort = "USERSERVICE_PORT"
	EnvInvServiceHost  = "INVSERVICE_HOST"
	EnvInvServicePort  = "INVSERVICE_PORT"
)

// HostPort is one external HTTP service authority.
type HostPort struct {
	Host string
	Port int
}

// URL returns the http base URL for the service.
func (h HostPort) URL() string {
	return fmt.Sprintf("http://%s:%d", h.Host, h.Port)
}

// Config is the full master server configuration: CLI flags plus the
// mandatory service environment and the lobby layout.
type Config struct {
	BindAddress   string
	MasterPort    int
	HolepunchPort int
	LogPackets    bool

	UserService HostPort
	InvService  HostPort

	Layout Layout
}

// ServicesFromEnv reads the mandatory service authorities. Every missing
// variable is reported; the server refuses to start on any.
func ServicesFromEnv() (user, inv HostPort, err error) {
	var missing []string

	read := func(hostKey, portKey string) HostPort {
		hp := HostPort{Host: os.Getenv(hostKey)}
		if hp.Host == "" {
			missing = append(missing, hostKey)
		}
		portStr := os.Getenv(portKey)
		if portStr == "" {
			missing = append(missing, portKey)
			return hp
		}
		port, convErr := strconv.Atoi(portStr)
		if convErr != nil || port <= 0 || port > 0xFFFF {
			missing = append(missing, portKey)
			return hp
		}
		hp.Port = port
		return hp
	}

	user = read(EnvUserServiceHost, EnvUserServicePort)
	inv = read(EnvInvServiceHost, EnvInvServicePort)

	if len(missing) > 0 {
		return user, inv, fmt.Errorf("missing or invalid environment variables: %v", missing)
	}
	return user, inv, nil
}

// LayoutServer describes one channel server in the lobby layout.
type LayoutServer struct {
	Name     string   `yaml:"name"`
	Channels []string `yaml:"channels"`
}

// Layout describes the advertised lobby tree.
type Layout struct {
	ChannelServers []LayoutServer `yaml:"channel_servers"`
}

// DefaultLayout is the lobby tree used when no layout file is given.
func DefaultLayout() Layout {
	return Layout{
		ChannelServers: []LayoutServer{
			{
				Name:     "Master",
				Channels: []string{"Channel 1", "Channel 2"},
			},
		},
	}
}

// LoadLayout loads the lobby layout from a YAML file.
// A missing file yields the default layout.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return layout, nil
		}
		return layout, fmt.Errorf("reading layout %s: %w", path, err)
	}

	var loaded Layout
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return layout, fmt.Errorf("parsing layout %s: %w", path, err)
	}
	if len(loaded.ChannelServers) == 0 {
		return layout, fmt.Errorf("layout %s declares no channel servers", path)
	}
	return loaded, nil
}
