package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration wraps time.Duration for TOML text values like "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ClientConfig is the full assetlink.toml surface.
type ClientConfig struct {
	ClientID string `toml:"client_id"`

	Server    ServerConfig    `toml:"server"`
	Timeouts  TimeoutConfig   `toml:"timeouts"`
	Retry     RetryConfig     `toml:"retry"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Admin     AdminConfig     `toml:"admin"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// ServerName steers SNI only; peer certificates are accepted
	// unconditionally.
	ServerName string `toml:"server_name"`
}

type TimeoutConfig struct {
	Connect Duration `toml:"connect"`
	// Exchange zero means each round trip awaits the peer with no
	// deadline of its own.
	Exchange Duration `toml:"exchange"`
}

type RetryConfig struct {
	MaxConnectAttempts int      `toml:"max_connect_attempts"`
	InitialDelay       Duration `toml:"initial_delay"`
	Multiplier         float64  `toml:"multiplier"`
	MaxDelay           Duration `toml:"max_delay"`
	Jitter             bool     `toml:"jitter"`
}

// DiscoveryConfig carries broadcast values for the external discovery
// collaborator. No discovery exchange exists in the protocol surface;
// these are configuration passthrough only.
type DiscoveryConfig struct {
	BroadcastPort     int      `toml:"broadcast_port"`
	BroadcastInterval Duration `toml:"broadcast_interval"`
}

type AdminConfig struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

// LoadClientConfig reads and validates one TOML config file, applying
// defaults for anything unset.
func LoadClientConfig(path string) (ClientConfig, error) {
	var cfg ClientConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	cfg.applyDefaults()
	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func (c *ClientConfig) applyDefaults() {
	if c.ClientID == "" {
		c.ClientID = "assetlink"
	}
	if c.Timeouts.Connect.Duration <= 0 {
		c.Timeouts.Connect.Duration = 5 * time.Second
	}
	if c.Retry.MaxConnectAttempts <= 0 {
		c.Retry.MaxConnectAttempts = 1
	}
	if c.Retry.InitialDelay.Duration <= 0 {
		c.Retry.InitialDelay.Duration = 250 * time.Millisecond
	}
	if c.Retry.Multiplier < 1.0 {
		c.Retry.Multiplier = 2.0
	}
	if c.Retry.MaxDelay.Duration <= 0 {
		c.Retry.MaxDelay.Duration = 5 * time.Second
	}
	if c.Admin.Addr == "" {
		c.Admin.Addr = "127.0.0.1:8088"
	}
}

func ValidateClientConfig(cfg ClientConfig) error {
	if strings.TrimSpace(cfg.Server.Host) == "" {
		return fmt.Errorf("client config missing server.host")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("client config server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Timeouts.Exchange.Duration < 0 {
		return fmt.Errorf("client config timeouts.exchange must not be negative")
	}
	if cfg.Admin.Enabled && strings.TrimSpace(cfg.Admin.Addr) == "" {
		return fmt.Errorf("client config admin.addr required when admin.enabled")
	}
	return nil
}
