package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/maxpert/amqp-client-go/errors"
)

// NetworkConfig holds broker endpoint and transport settings
type NetworkConfig struct {
	Host              string        `koanf:"host" yaml:"host"`
	Port              int           `koanf:"port" yaml:"port"`
	VHost             string        `koanf:"vhost" yaml:"vhost"`
	ConnectionTimeout time.Duration `koanf:"connection_timeout" yaml:"connection_timeout"`
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval" yaml:"heartbeat_interval"`
	TLSEnabled        bool          `koanf:"tls_enabled" yaml:"tls_enabled"`
	TLSCertFile       string        `koanf:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile        string        `koanf:"tls_key_file" yaml:"tls_key_file"`
	TLSCAFile         string        `koanf:"tls_ca_file" yaml:"tls_ca_file"`
}

// TuningConfig holds the protocol limits negotiated at connection start
type TuningConfig struct {
	ChannelMax int    `koanf:"channel_max" yaml:"channel_max"`
	FrameMax   int    `koanf:"frame_max" yaml:"frame_max"`
	Locale     string `koanf:"locale" yaml:"locale"`
}

// ClientConfig holds the client identity and observability settings
type ClientConfig struct {
	Product     string `koanf:"product" yaml:"product"`
	Version     string `koanf:"version" yaml:"version"`
	Platform    string `koanf:"platform" yaml:"platform"`
	LogLevel    string `koanf:"log_level" yaml:"log_level"`
	MetricsPort int    `koanf:"metrics_port" yaml:"metrics_port"`
}

// AMQPConfig is the full client configuration
type AMQPConfig struct {
	Network NetworkConfig `koanf:"network" yaml:"network"`
	Tuning  TuningConfig  `koanf:"tuning" yaml:"tuning"`
	Client  ClientConfig  `koanf:"client" yaml:"client"`
}

// DefaultConfig creates a configuration with sensible defaults
func DefaultConfig() *AMQPConfig {
	return &AMQPConfig{
		Network: NetworkConfig{
			Host:              "localhost",
			Port:              5672,
			VHost:             "/",
			ConnectionTimeout: 30 * time.Second,
			HeartbeatInterval: 60 * time.Second,
		},
		Tuning: TuningConfig{
			ChannelMax: 2047,
			FrameMax:   131072, // 128KB
			Locale:     "en_US",
		},
		Client: ClientConfig{
			Product:     "AMQP-Client-Go",
			Version:     "0.9.1",
			Platform:    "Go",
			LogLevel:    "info",
			MetricsPort: 0, // disabled
		},
	}
}

// EnvPrefix is the prefix of environment variable overrides, e.g.
// AMQP_NETWORK_HOST overrides network.host.
const EnvPrefix = "AMQP_"

// Load merges configuration from a YAML file and AMQP_* environment
// variables over the receiver. Environment variables win over the file.
func (c *AMQPConfig) Load(source string) error {
	k := koanf.New(".")

	if source != "" {
		if filepath.Ext(source) != ".yaml" && filepath.Ext(source) != ".yml" {
			return errors.NewConfigError("unsupported configuration format (only YAML supported)", "file", source, nil)
		}
		if err := k.Load(file.Provider(source), yaml.Parser()); err != nil {
			return errors.NewConfigError("failed to read configuration file", "file", source, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.Replace(key, "_", ".", 1), value
		},
	}), nil); err != nil {
		return errors.NewConfigError("failed to read environment overrides", "env", EnvPrefix, err)
	}

	if err := k.Unmarshal("", c); err != nil {
		return errors.NewConfigError("failed to parse configuration", "", "", err)
	}
	return c.Validate()
}

// Save writes the configuration to a YAML file
func (c *AMQPConfig) Save(destination string) error {
	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewConfigError("failed to create configuration directory", "file", destination, err)
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.NewConfigError("failed to marshal configuration", "", "", err)
	}

	if err := os.WriteFile(destination, data, 0644); err != nil {
		return errors.NewConfigError("failed to write configuration file", "file", destination, err)
	}
	return nil
}

// Validate validates the configuration
func (c *AMQPConfig) Validate() error {
	if c.Network.Host == "" {
		return errors.NewConfigValidationError("network", "host", "cannot be empty")
	}
	if c.Network.Port <= 0 || c.Network.Port > 65535 {
		return errors.NewConfigValidationError("network", "port", "must be in 1..65535")
	}
	if c.Network.VHost == "" {
		return errors.NewConfigValidationError("network", "vhost", "cannot be empty")
	}
	if c.Network.ConnectionTimeout <= 0 {
		return errors.NewConfigValidationError("network", "connection_timeout", "must be positive")
	}
	if c.Network.HeartbeatInterval < 0 {
		return errors.NewConfigValidationError("network", "heartbeat_interval", "must not be negative")
	}
	if c.Network.TLSEnabled {
		if c.Network.TLSCertFile == "" || c.Network.TLSKeyFile == "" {
			return errors.NewConfigValidationError("network", "tls_cert_file", "cert and key files required when TLS is enabled")
		}
	}

	if c.Tuning.ChannelMax <= 0 || c.Tuning.ChannelMax > 65535 {
		return errors.NewConfigValidationError("tuning", "channel_max", "must be in 1..65535")
	}
	if c.Tuning.FrameMax < 4096 {
		return errors.NewConfigValidationError("tuning", "frame_max", "must be at least 4096")
	}
	if c.Tuning.Locale == "" {
		return errors.NewConfigValidationError("tuning", "locale", "cannot be empty")
	}

	if c.Client.MetricsPort < 0 || c.Client.MetricsPort > 65535 {
		return errors.NewConfigValidationError("client", "metrics_port", "must be in 0..65535")
	}
	return nil
}

// URL returns the broker endpoint as an AMQP URL
func (c *AMQPConfig) URL() string {
	scheme := "amqp"
	if c.Network.TLSEnabled {
		scheme = "amqps"
	}
	vhost := c.Network.VHost
	if vhost == "/" {
		vhost = ""
	}
	return scheme + "://" + c.Network.Host + ":" + strconv.Itoa(c.Network.Port) + "/" + vhost
}
