package verse

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries the settings for one ledger client.
type Config struct {
	// NodeURL is the ledger node base URL, e.g. https://node.interverse.gg.
	NodeURL string `env:"VERSE_NODE_URL"`
	// GameID identifies this game to the ledger during the duplex handshake.
	GameID string `env:"VERSE_GAME_ID"`
	// APIKey authenticates every HTTP call and the duplex dial.
	APIKey string `env:"VERSE_API_KEY"`
	// CallTimeout bounds each gateway operation. Zero disables the bound.
	CallTimeout time.Duration `env:"VERSE_CALL_TIMEOUT" envDefault:"15s"`
	// DialTimeout bounds the duplex channel dial.
	DialTimeout time.Duration `env:"VERSE_DIAL_TIMEOUT" envDefault:"10s"`

	// Logf receives diagnostic output. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// ConfigFromEnv loads client settings from VERSE_* environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, wrapError(CodeConfig, "load config", "parse environment", err)
	}
	return cfg, nil
}

// normalize trims free-form settings and applies defaults.
func (c Config) normalize() Config {
	c.NodeURL = strings.TrimRight(strings.TrimSpace(c.NodeURL), "/")
	c.GameID = strings.TrimSpace(c.GameID)
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.CallTimeout < 0 {
		c.CallTimeout = 0
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	return c
}

// validate rejects configurations the ledger could never accept.
func (c Config) validate() error {
	if c.NodeURL == "" {
		return newError(CodeConfig, "new client", "node url is required")
	}
	if !strings.HasPrefix(c.NodeURL, "http://") && !strings.HasPrefix(c.NodeURL, "https://") {
		return newError(CodeConfig, "new client", fmt.Sprintf("node url %q must use http or https", c.NodeURL))
	}
	if c.GameID == "" {
		return newError(CodeConfig, "new client", "game id is required")
	}
	if c.APIKey == "" {
		return newError(CodeConfig, "new client", "api key is required")
	}
	return nil
}
