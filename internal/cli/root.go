// Package cli implements the versectl command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	platformcmd "github.com/interverse/verse-go/internal/platform/cmd"
	keystoresqlite "github.com/interverse/verse-go/keystore/sqlite"
	"github.com/interverse/verse-go/verse"
)

var (
	nodeURL    string
	gameID     string
	apiKey     string
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "versectl",
	Short: "Client for the Verse asset ledger",
	Long: "Command-line client for the Verse asset ledger: wallets, asset minting and\n" +
		"transfers, material styles, and live push streams.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&nodeURL, "node", "", "Ledger node base URL (default: $VERSE_NODE_URL)")
	RootCmd.PersistentFlags().StringVar(&gameID, "game", "", "Game id for the ledger handshake (default: $VERSE_GAME_ID)")
	RootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Ledger API key (default: $VERSE_API_KEY)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Wallet keystore path (default: $VERSE_DB_PATH or ~/.verse/wallets.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// settings is the CLI configuration: the client settings plus the local
// keystore location. Env defaults load first; flags override per field.
type settings struct {
	verse.Config
	DBPath string `env:"VERSE_DB_PATH"`
}

func loadSettings() (settings, error) {
	var cfg settings
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return settings{}, err
	}
	if nodeURL != "" {
		cfg.NodeURL = nodeURL
	}
	if gameID != "" {
		cfg.GameID = gameID
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func newClient() (*verse.Client, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return verse.NewClient(cfg.Config)
}

func keystorePath() (string, error) {
	cfg, err := loadSettings()
	if err != nil {
		return "", err
	}
	path := cfg.DBPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, ".verse", "wallets.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create keystore dir: %w", err)
	}
	return path, nil
}

func openKeystore() (*keystoresqlite.Store, error) {
	path, err := keystorePath()
	if err != nil {
		return nil, err
	}
	return keystoresqlite.Open(path)
}

// emit prints v as indented JSON, or the text rendering when --format=text.
func emit(v any, text func() string) {
	if strings.EqualFold(formatFlag, "text") && text != nil {
		fmt.Println(text())
		return
	}
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode output", err)
	}
	fmt.Println(string(encoded))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
