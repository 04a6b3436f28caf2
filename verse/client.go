package verse

import (
	"log"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	defaultDialTimeout = 10 * time.Second

	maxDecodeErrorsPerSession = 3
	maxErrorBodyBytes         = 8 * 1024

	apiKeyHeader = "X-API-Key"
)

// Client talks to one Interverse ledger node on behalf of one game.
//
// A client owns at most one duplex push channel plus an HTTP surface for
// discrete ledger operations. Construct it with NewClient, call Connect
// when push delivery is wanted, and share the instance by reference; there
// is no implicit global. All methods are safe for concurrent use.
type Client struct {
	nodeURL     string
	gameID      string
	apiKey      string
	callTimeout time.Duration
	logf        func(format string, args ...any)

	httpClient *http.Client
	dial       dialFunc

	clock    func() time.Time
	newToken func() string

	mu           sync.Mutex
	state        SessionState
	conn         *framedConn
	closing      bool
	unrecognized map[string]int
	assets       map[string]AssetRecord

	pendingMu sync.Mutex
	pending   map[string]PendingOperation

	assetFeed    *feed[AssetUpdateEvent]
	balanceFeed  *feed[BalanceUpdateEvent]
	transferFeed *feed[TransferCompleteEvent]
	connFeed     *feed[ConnectionStateEvent]
}

// NewClient validates cfg and builds a disconnected client. No network
// traffic happens until Connect or a gateway call.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}

	tokens := newTokenSource()
	client := &Client{
		nodeURL:     cfg.NodeURL,
		gameID:      cfg.GameID,
		apiKey:      cfg.APIKey,
		callTimeout: cfg.CallTimeout,
		logf:        logf,
		httpClient:  &http.Client{},
		dial:        newWebSocketDialer(cfg.APIKey, cfg.DialTimeout),
		clock:       time.Now,
		newToken:    tokens.next,
		assets:      make(map[string]AssetRecord),
		pending:     make(map[string]PendingOperation),
	}
	client.assetFeed = newFeed[AssetUpdateEvent](logf)
	client.balanceFeed = newFeed[BalanceUpdateEvent](logf)
	client.transferFeed = newFeed[TransferCompleteEvent](logf)
	client.connFeed = newFeed[ConnectionStateEvent](logf)
	return client, nil
}

// GameID returns the game this client authenticates as.
func (c *Client) GameID() string {
	return c.gameID
}

// NodeURL returns the ledger node base URL.
func (c *Client) NodeURL() string {
	return c.nodeURL
}

// OnAssetUpdate registers a callback for minted and updated assets, from
// push frames and successful mint calls alike.
func (c *Client) OnAssetUpdate(fn func(AssetUpdateEvent)) *Subscription {
	return c.assetFeed.subscribe(fn)
}

// OnBalanceUpdate registers a callback for wallet balance changes.
func (c *Client) OnBalanceUpdate(fn func(BalanceUpdateEvent)) *Subscription {
	return c.balanceFeed.subscribe(fn)
}

// OnTransferComplete registers a callback for resolved transfer attempts.
func (c *Client) OnTransferComplete(fn func(TransferCompleteEvent)) *Subscription {
	return c.transferFeed.subscribe(fn)
}

// OnConnectionState registers a callback for session lifecycle transitions.
func (c *Client) OnConnectionState(fn func(ConnectionStateEvent)) *Subscription {
	return c.connFeed.subscribe(fn)
}

// CachedAsset returns the last record observed for one asset id.
func (c *Client) CachedAsset(assetID string) (AssetRecord, bool) {
	if c == nil {
		return AssetRecord{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	asset, ok := c.assets[assetID]
	return asset, ok
}

// CachedAssets snapshots every asset record observed this session, sorted
// by id.
func (c *Client) CachedAssets() []AssetRecord {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	assets := make([]AssetRecord, 0, len(c.assets))
	for _, asset := range c.assets {
		assets = append(assets, asset)
	}
	c.mu.Unlock()

	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets
}

// rememberAsset replaces the cached copy wholesale; records are never
// merged field by field.
func (c *Client) rememberAsset(asset AssetRecord) {
	if strings.TrimSpace(asset.ID) == "" {
		return
	}
	c.mu.Lock()
	if c.assets == nil {
		c.assets = make(map[string]AssetRecord)
	}
	c.assets[asset.ID] = asset
	c.mu.Unlock()
}

// tokenSource mints lexically sortable correlation tokens for gateway
// calls. ULIDs keep pending-operation listings in start order even across
// process restarts.
type tokenSource struct {
	mu      sync.Mutex
	entropy *rand.Rand
}

func newTokenSource() *tokenSource {
	return &tokenSource{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (t *tokenSource) next() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), t.entropy).String()
}
