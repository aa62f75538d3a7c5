package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	assert.Equal(t, "localhost", config.Network.Host)
	assert.Equal(t, 5672, config.Network.Port)
	assert.Equal(t, "/", config.Network.VHost)
	assert.Equal(t, 2047, config.Tuning.ChannelMax)
	assert.Equal(t, 131072, config.Tuning.FrameMax)
	assert.Equal(t, "en_US", config.Tuning.Locale)
	assert.Equal(t, false, config.Network.TLSEnabled)
	assert.Equal(t, 0, config.Client.MetricsPort)

	// Test validation passes
	err := config.Validate()
	assert.NoError(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*AMQPConfig)
		wantErr bool
	}{
		{
			name: "valid config",
			modify: func(c *AMQPConfig) {
				// Default config should be valid
			},
			wantErr: false,
		},
		{
			name: "invalid port - zero",
			modify: func(c *AMQPConfig) {
				c.Network.Port = 0
			},
			wantErr: true,
		},
		{
			name: "invalid port - too high",
			modify: func(c *AMQPConfig) {
				c.Network.Port = 70000
			},
			wantErr: true,
		},
		{
			name: "empty host",
			modify: func(c *AMQPConfig) {
				c.Network.Host = ""
			},
			wantErr: true,
		},
		{
			name: "empty vhost",
			modify: func(c *AMQPConfig) {
				c.Network.VHost = ""
			},
			wantErr: true,
		},
		{
			name: "negative heartbeat",
			modify: func(c *AMQPConfig) {
				c.Network.HeartbeatInterval = -time.Second
			},
			wantErr: true,
		},
		{
			name: "zero heartbeat disables heartbeats",
			modify: func(c *AMQPConfig) {
				c.Network.HeartbeatInterval = 0
			},
			wantErr: false,
		},
		{
			name: "tls enabled without cert",
			modify: func(c *AMQPConfig) {
				c.Network.TLSEnabled = true
			},
			wantErr: true,
		},
		{
			name: "channel max too high",
			modify: func(c *AMQPConfig) {
				c.Tuning.ChannelMax = 100000
			},
			wantErr: true,
		},
		{
			name: "frame max below protocol minimum",
			modify: func(c *AMQPConfig) {
				c.Tuning.FrameMax = 1024
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigBuilder(t *testing.T) {
	config, err := NewConfigBuilder().
		WithHost("rabbit.internal").
		WithPort(5671).
		WithVirtualHost("orders").
		WithHeartbeat(30 * time.Second).
		WithTLS("client.pem", "client.key").
		WithTLSCA("ca.pem").
		WithProtocolLimits(1024, 65536).
		WithLocale("en_GB").
		WithClientInfo("billing-worker", "2.4.0", "linux/amd64").
		WithLogging("debug").
		WithMetrics(9419).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "rabbit.internal", config.Network.Host)
	assert.Equal(t, 5671, config.Network.Port)
	assert.Equal(t, "orders", config.Network.VHost)
	assert.Equal(t, 30*time.Second, config.Network.HeartbeatInterval)
	assert.True(t, config.Network.TLSEnabled)
	assert.Equal(t, "ca.pem", config.Network.TLSCAFile)
	assert.Equal(t, 1024, config.Tuning.ChannelMax)
	assert.Equal(t, 65536, config.Tuning.FrameMax)
	assert.Equal(t, "en_GB", config.Tuning.Locale)
	assert.Equal(t, "billing-worker", config.Client.Product)
	assert.Equal(t, 9419, config.Client.MetricsPort)
}

func TestConfigBuilderRejectsInvalid(t *testing.T) {
	_, err := NewConfigBuilder().WithPort(0).Build()
	assert.Error(t, err)

	// BuildUnsafe skips validation
	config := NewConfigBuilder().WithPort(0).BuildUnsafe()
	assert.Equal(t, 0, config.Network.Port)
}

func TestConfigLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")

	yaml := `
network:
  host: broker.example.com
  port: 5671
  vhost: production
  heartbeat_interval: 20s
tuning:
  channel_max: 512
  frame_max: 32768
client:
  product: inventory-service
  log_level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	config := DefaultConfig()
	require.NoError(t, config.Load(path))

	assert.Equal(t, "broker.example.com", config.Network.Host)
	assert.Equal(t, 5671, config.Network.Port)
	assert.Equal(t, "production", config.Network.VHost)
	assert.Equal(t, 20*time.Second, config.Network.HeartbeatInterval)
	assert.Equal(t, 512, config.Tuning.ChannelMax)
	assert.Equal(t, 32768, config.Tuning.FrameMax)
	assert.Equal(t, "inventory-service", config.Client.Product)
	assert.Equal(t, "warn", config.Client.LogLevel)

	// Fields absent from the file keep their defaults
	assert.Equal(t, "en_US", config.Tuning.Locale)
}

func TestConfigLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network:\n  host: from-file\n"), 0644))

	t.Setenv("AMQP_NETWORK_HOST", "from-env")
	t.Setenv("AMQP_NETWORK_PORT", "5673")

	config := DefaultConfig()
	require.NoError(t, config.Load(path))

	assert.Equal(t, "from-env", config.Network.Host)
	assert.Equal(t, 5673, config.Network.Port)
}

func TestConfigLoadRejectsUnknownFormat(t *testing.T) {
	config := DefaultConfig()
	err := config.Load("client.toml")
	assert.Error(t, err)
}

func TestConfigSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")

	original, err := NewConfigBuilder().
		WithHost("rabbit.local").
		WithVirtualHost("staging").
		WithProtocolLimits(256, 16384).
		Build()
	require.NoError(t, err)
	require.NoError(t, original.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, original.Network.Host, loaded.Network.Host)
	assert.Equal(t, original.Network.VHost, loaded.Network.VHost)
	assert.Equal(t, original.Tuning.ChannelMax, loaded.Tuning.ChannelMax)
	assert.Equal(t, original.Tuning.FrameMax, loaded.Tuning.FrameMax)
}

func TestConfigURL(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "amqp://localhost:5672/", config.URL())

	config.Network.VHost = "orders"
	config.Network.TLSEnabled = true
	assert.Equal(t, "amqps://localhost:5672/orders", config.URL())
}
