package config

import (
	"github.com/assetlink/assetlink/internal/client"
)

// ClientOptions maps the file surface onto the protocol client config.
func ClientOptions(cfg ClientConfig) client.Config {
	return client.Config{
		Host:               cfg.Server.Host,
		Port:               cfg.Server.Port,
		ClientID:           cfg.ClientID,
		ServerName:         cfg.Server.ServerName,
		ConnectTimeout:     cfg.Timeouts.Connect.Duration,
		ExchangeTimeout:    cfg.Timeouts.Exchange.Duration,
		MaxConnectAttempts: cfg.Retry.MaxConnectAttempts,
		Backoff: client.BackoffConfig{
			InitialDelay: cfg.Retry.InitialDelay.Duration,
			Multiplier:   cfg.Retry.Multiplier,
			MaxDelay:     cfg.Retry.MaxDelay.Duration,
			Jitter:       cfg.Retry.Jitter,
		},
	}
}
