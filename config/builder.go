package config

import (
	"time"
)

// ConfigBuilder provides a fluent API for building configuration
type ConfigBuilder struct {
	config *AMQPConfig
}

// NewConfigBuilder creates a new configuration builder with defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: DefaultConfig(),
	}
}

// FromConfig creates a builder from an existing configuration
func FromConfig(config *AMQPConfig) *ConfigBuilder {
	// Deep copy the configuration
	builder := NewConfigBuilder()
	*builder.config = *config
	return builder
}

// Network Configuration

// WithHost sets the broker host
func (b *ConfigBuilder) WithHost(host string) *ConfigBuilder {
	b.config.Network.Host = host
	return b
}

// WithPort sets the broker port
func (b *ConfigBuilder) WithPort(port int) *ConfigBuilder {
	b.config.Network.Port = port
	return b
}

// WithVirtualHost sets the virtual host
func (b *ConfigBuilder) WithVirtualHost(vhost string) *ConfigBuilder {
	b.config.Network.VHost = vhost
	return b
}

// WithConnectionTimeout sets the connection timeout
func (b *ConfigBuilder) WithConnectionTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.Network.ConnectionTimeout = timeout
	return b
}

// WithHeartbeat sets the heartbeat interval
func (b *ConfigBuilder) WithHeartbeat(interval time.Duration) *ConfigBuilder {
	b.config.Network.HeartbeatInterval = interval
	return b
}

// WithTLS enables TLS with the specified certificate and key files
func (b *ConfigBuilder) WithTLS(certFile, keyFile string) *ConfigBuilder {
	b.config.Network.TLSEnabled = true
	b.config.Network.TLSCertFile = certFile
	b.config.Network.TLSKeyFile = keyFile
	return b
}

// WithTLSCA sets the TLS CA file
func (b *ConfigBuilder) WithTLSCA(caFile string) *ConfigBuilder {
	b.config.Network.TLSCAFile = caFile
	return b
}

// Tuning Configuration

// WithProtocolLimits sets the channel and frame size limits offered at tune time
func (b *ConfigBuilder) WithProtocolLimits(channelMax, frameMax int) *ConfigBuilder {
	b.config.Tuning.ChannelMax = channelMax
	b.config.Tuning.FrameMax = frameMax
	return b
}

// WithLocale sets the preferred locale
func (b *ConfigBuilder) WithLocale(locale string) *ConfigBuilder {
	b.config.Tuning.Locale = locale
	return b
}

// Client Configuration

// WithClientInfo sets the client identity reported in client-properties
func (b *ConfigBuilder) WithClientInfo(product, version, platform string) *ConfigBuilder {
	b.config.Client.Product = product
	b.config.Client.Version = version
	b.config.Client.Platform = platform
	return b
}

// WithLogging sets the log level
func (b *ConfigBuilder) WithLogging(level string) *ConfigBuilder {
	b.config.Client.LogLevel = level
	return b
}

// WithMetrics enables the Prometheus endpoint on the given port
func (b *ConfigBuilder) WithMetrics(port int) *ConfigBuilder {
	b.config.Client.MetricsPort = port
	return b
}

// Build returns the configured AMQPConfig
func (b *ConfigBuilder) Build() (*AMQPConfig, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// BuildUnsafe returns the configured AMQPConfig without validation
func (b *ConfigBuilder) BuildUnsafe() *AMQPConfig {
	return b.config
}
