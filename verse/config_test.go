package verse

import (
	"testing"
	"time"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("VERSE_NODE_URL", "https://node.example")
	t.Setenv("VERSE_GAME_ID", "game-1")
	t.Setenv("VERSE_API_KEY", "secret-key")
	t.Setenv("VERSE_CALL_TIMEOUT", "3s")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.NodeURL != "https://node.example" {
		t.Fatalf("NodeURL = %q, want %q", cfg.NodeURL, "https://node.example")
	}
	if cfg.GameID != "game-1" {
		t.Fatalf("GameID = %q, want %q", cfg.GameID, "game-1")
	}
	if cfg.CallTimeout != 3*time.Second {
		t.Fatalf("CallTimeout = %v, want 3s", cfg.CallTimeout)
	}
	if cfg.DialTimeout != 10*time.Second {
		t.Fatalf("DialTimeout = %v, want default 10s", cfg.DialTimeout)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("VERSE_NODE_URL", "https://node.example")
	t.Setenv("VERSE_GAME_ID", "game-1")
	t.Setenv("VERSE_API_KEY", "secret-key")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.CallTimeout != 15*time.Second {
		t.Fatalf("CallTimeout = %v, want default 15s", cfg.CallTimeout)
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "missing node url",
			cfg:  Config{GameID: "game-1", APIKey: "key"},
		},
		{
			name: "bad scheme",
			cfg:  Config{NodeURL: "ftp://node.example", GameID: "game-1", APIKey: "key"},
		},
		{
			name: "missing game id",
			cfg:  Config{NodeURL: "https://node.example", APIKey: "key"},
		},
		{
			name: "missing api key",
			cfg:  Config{NodeURL: "https://node.example", GameID: "game-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if err == nil {
				t.Fatal("NewClient succeeded, want error")
			}
			if CodeOf(err) != CodeConfig {
				t.Fatalf("CodeOf(err) = %q, want %q", CodeOf(err), CodeConfig)
			}
		})
	}
}

func TestNewClientNormalizesNodeURL(t *testing.T) {
	client, err := NewClient(Config{
		NodeURL: "  https://node.example/  ",
		GameID:  " game-1 ",
		APIKey:  "key",
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := client.NodeURL(); got != "https://node.example" {
		t.Fatalf("NodeURL() = %q, want %q", got, "https://node.example")
	}
	if got := client.GameID(); got != "game-1" {
		t.Fatalf("GameID() = %q, want %q", got, "game-1")
	}
}
