package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setServiceEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvUserServiceHost, "users.internal")
	t.Setenv(EnvUserServicePort, "8081")
	t.Setenv(EnvInvServiceHost, "inventory.internal")
	t.Setenv(EnvInvServicePort, "8082")
}

func TestServicesFromEnv(t *testing.T) {
	setServiceEnv(t)

	user, inv, err := ServicesFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://users.internal:8081", user.URL())
	assert.Equal(t, "http://inventory.internal:8082", inv.URL())
}

func TestServicesFromEnv_ReportsAllMissing(t *testing.T) {
	t.Setenv(EnvUserServiceHost, "")
	t.Setenv(EnvUserServicePort, "")
	t.Setenv(EnvInvServiceHost, "inventory.internal")
	t.Setenv(EnvInvServicePort, "8082")

	_, _, err := ServicesFromEnv()
	require.Error(t, err)
	// Both missing variables are named in one error.
	assert.Contains(t, err.Error(), EnvUserServiceHost)
	assert.Contains(t, err.Error(), EnvUserServicePort)
	assert.NotContains(t, err.Error(), EnvInvServiceHost)
}

func TestServicesFromEnv_BadPort(t *testing.T) {
	setServiceEnv(t)

	for _, port := range []string{"not-a-number", "0", "-1", "70000"} {
		t.Setenv(EnvUserServicePort, port)
		_, _, err := ServicesFromEnv()
		assert.Error(t, err, "port %q must be rejected", port)
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	data := strings.TrimSpace(`
channel_servers:
  - name: Europe
    channels: ["EU 1", "EU 2", "EU 3"]
  - name: Asia
    channels: ["Asia 1"]
`)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	layout, err := LoadLayout(path)
	require.NoError(t, err)
	require.Len(t, layout.ChannelServers, 2)
	assert.Equal(t, "Europe", layout.ChannelServers[0].Name)
	assert.Len(t, layout.ChannelServers[0].Channels, 3)
	assert.Equal(t, "Asia 1", layout.ChannelServers[1].Channels[0])
}

func TestLoadLayout_MissingFileUsesDefaults(t *testing.T) {
	layout, err := LoadLayout(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout(), layout)
}

func TestLoadLayout_EmptyServersRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channel_servers: []\n"), 0o644))

	_, err := LoadLayout(path)
	assert.Error(t, err)
}

func TestLoadLayout_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channel_servers: [\n"), 0o644))

	_, err := LoadLayout(path)
	assert.Error(t, err)
}

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout()
	require.Len(t, layout.ChannelServers, 1)
	assert.NotEmpty(t, layout.ChannelServers[0].Channels)
}
