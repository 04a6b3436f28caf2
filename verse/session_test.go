package verse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

// pushNode is a fake ledger node for session tests. It accepts duplex
// channels on /ws, records handshakes, and lets tests push raw frames to
// the most recent session.
type pushNode struct {
	t          *testing.T
	srv        *httptest.Server
	mu         sync.Mutex
	conn       *websocket.Conn
	handshakes chan handshakeFrame
	apiKeys    chan string
}

func newPushNode(t *testing.T) *pushNode {
	t.Helper()
	node := &pushNode{
		t:          t,
		handshakes: make(chan handshakeFrame, 4),
		apiKeys:    make(chan string, 4),
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(node.serve))
	node.srv = httptest.NewServer(mux)
	t.Cleanup(node.srv.Close)
	return node
}

func (n *pushNode) serve(conn *websocket.Conn) {
	n.apiKeys <- conn.Request().URL.Query().Get("api_key")

	n.mu.Lock()
	n.conn = conn
	n.mu.Unlock()

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			return
		}
		var frame handshakeFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Type == kindHandshake {
			n.handshakes <- frame
		}
	}
}

// push sends one raw text frame to the connected session.
func (n *pushNode) push(raw string) {
	n.t.Helper()
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		n.t.Fatal("push before a session connected")
	}
	if err := websocket.Message.Send(conn, raw); err != nil {
		n.t.Fatalf("push frame: %v", err)
	}
}

// closeSession drops the duplex channel from the server side.
func (n *pushNode) closeSession() {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func newSessionClient(t *testing.T, nodeURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		NodeURL: nodeURL,
		GameID:  "game-1",
		APIKey:  "secret-key",
		Logf:    func(string, ...any) {},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.Disconnect)
	return client
}

// connectReady connects the client and waits until the node has consumed
// the handshake, which also guarantees the push channel is registered.
func connectReady(t *testing.T, client *Client, node *pushNode) {
	t.Helper()
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	hs := waitFor(t, node.handshakes)
	if hs.GameID != client.GameID() {
		t.Fatalf("handshake game_id = %q, want %q", hs.GameID, client.GameID())
	}
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		var zero T
		return zero
	}
}

func TestConnectSendsHandshake(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	states := make(chan ConnectionStateEvent, 8)
	client.OnConnectionState(func(evt ConnectionStateEvent) { states <- evt })

	connectReady(t, client, node)

	if got := client.State(); got != StateReady {
		t.Fatalf("State() = %v, want %v", got, StateReady)
	}
	if key := waitFor(t, node.apiKeys); key != "secret-key" {
		t.Fatalf("api_key query = %q, want %q", key, "secret-key")
	}

	wantStates := []SessionState{StateConnecting, StateAwaitingHandshakeAck, StateReady}
	for _, want := range wantStates {
		evt := waitFor(t, states)
		if evt.State != want {
			t.Fatalf("state transition = %v, want %v", evt.State, want)
		}
		if evt.Err != nil {
			t.Fatalf("transition to %v carried error: %v", want, evt.Err)
		}
	}
}

func TestReadyEventPrecedesFirstPush(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	var ready atomic.Bool
	client.OnConnectionState(func(evt ConnectionStateEvent) {
		if evt.State == StateReady {
			ready.Store(true)
		}
	})

	sawReady := make(chan bool, 4)
	client.OnAssetUpdate(func(AssetUpdateEvent) { sawReady <- ready.Load() })

	connectReady(t, client, node)

	node.push(`{"type":"asset_update","asset":{"asset_id":"asset-1","owner":"wallet-1","game_id":"game-1","category":"weapon","rarity":"rare","level":1}}`)

	if !waitFor(t, sawReady) {
		t.Fatal("asset update delivered before the ready connection event")
	}
}

func TestConnectIsNoOpWhileConnected(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	assets := make(chan AssetUpdateEvent, 4)
	client.OnAssetUpdate(func(evt AssetUpdateEvent) { assets <- evt })

	connectReady(t, client, node)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}

	node.push(`{"type":"asset_update","asset":{"asset_id":"asset-1","owner":"wallet-1","game_id":"game-1","category":"weapon","rarity":"rare","level":2}}`)
	waitFor(t, assets)

	select {
	case <-node.handshakes:
		t.Fatal("second Connect sent another handshake")
	default:
	}
}

func TestPushAssetUpdate(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	assets := make(chan AssetUpdateEvent, 4)
	client.OnAssetUpdate(func(evt AssetUpdateEvent) { assets <- evt })

	connectReady(t, client, node)

	node.push(`{"type":"asset_update","asset":{"asset_id":"asset-1","owner":"wallet-1","game_id":"game-1","category":"weapon","rarity":"epic","level":4,"numeric_properties":{"damage":88}}}`)

	evt := waitFor(t, assets)
	if evt.Asset.ID != "asset-1" {
		t.Fatalf("asset id = %q, want %q", evt.Asset.ID, "asset-1")
	}
	if evt.Asset.Rarity != RarityEpic {
		t.Fatalf("rarity = %q, want %q", evt.Asset.Rarity, RarityEpic)
	}
	if evt.Asset.NumericProperties["damage"] != 88 {
		t.Fatalf("damage = %v, want 88", evt.Asset.NumericProperties["damage"])
	}

	cached, ok := client.CachedAsset("asset-1")
	if !ok {
		t.Fatal("asset missing from cache after push")
	}
	if cached.Level != 4 {
		t.Fatalf("cached level = %d, want 4", cached.Level)
	}
}

func TestPushNewAssetAlias(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	assets := make(chan AssetUpdateEvent, 4)
	client.OnAssetUpdate(func(evt AssetUpdateEvent) { assets <- evt })

	connectReady(t, client, node)

	node.push(`{"type":"new_asset","asset":{"asset_id":"asset-2","owner":"wallet-1","game_id":"game-1","category":"pet","rarity":"common","level":1}}`)

	evt := waitFor(t, assets)
	if evt.Asset.ID != "asset-2" {
		t.Fatalf("asset id = %q, want %q", evt.Asset.ID, "asset-2")
	}
}

func TestPushDeliveryKeepsArrivalOrder(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	assets := make(chan AssetUpdateEvent, 16)
	client.OnAssetUpdate(func(evt AssetUpdateEvent) { assets <- evt })

	connectReady(t, client, node)

	for i := 1; i <= 5; i++ {
		node.push(fmt.Sprintf(`{"type":"asset_update","asset":{"asset_id":"asset-%d","owner":"wallet-1","game_id":"game-1","category":"weapon","rarity":"common","level":%d}}`, i, i))
	}

	for i := 1; i <= 5; i++ {
		evt := waitFor(t, assets)
		if want := fmt.Sprintf("asset-%d", i); evt.Asset.ID != want {
			t.Fatalf("delivery %d = %q, want %q", i, evt.Asset.ID, want)
		}
	}
}

func TestPushBalanceAndTransferFrames(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	balances := make(chan BalanceUpdateEvent, 4)
	transfers := make(chan TransferCompleteEvent, 4)
	client.OnBalanceUpdate(func(evt BalanceUpdateEvent) { balances <- evt })
	client.OnTransferComplete(func(evt TransferCompleteEvent) { transfers <- evt })

	connectReady(t, client, node)

	node.push(`{"type":"balance_update","data":{"balance":42.5,"address":"wallet-1"}}`)
	node.push(`{"type":"transfer_complete","data":{"asset_id":"asset-1","sender":"wallet-1","recipient":"wallet-2","success":true}}`)

	balance := waitFor(t, balances)
	if balance.Address != "wallet-1" || balance.Balance != 42.5 {
		t.Fatalf("balance event = %+v, want wallet-1 / 42.5", balance)
	}

	transfer := waitFor(t, transfers)
	if !transfer.Success {
		t.Fatal("transfer event success = false, want true")
	}
	if transfer.From != "wallet-1" || transfer.To != "wallet-2" {
		t.Fatalf("transfer event = %+v, want wallet-1 -> wallet-2", transfer)
	}
}

func TestUnrecognizedKindLoggedOncePerSession(t *testing.T) {
	node := newPushNode(t)
	recorder := &logRecorder{}
	client, err := NewClient(Config{
		NodeURL: node.srv.URL,
		GameID:  "game-1",
		APIKey:  "secret-key",
		Logf:    recorder.logf,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.Disconnect)

	assets := make(chan AssetUpdateEvent, 4)
	client.OnAssetUpdate(func(evt AssetUpdateEvent) { assets <- evt })

	connectReady(t, client, node)

	node.push(`{"type":"welcome","data":{}}`)
	node.push(`{"type":"welcome","data":{}}`)
	node.push(`{"type":"mystery"}`)
	node.push(`{"type":"asset_update","asset":{"asset_id":"asset-1","owner":"wallet-1","game_id":"game-1","category":"weapon","rarity":"rare","level":1}}`)

	waitFor(t, assets)

	if got := recorder.count(`unrecognized frame kind "welcome"`); got != 1 {
		t.Fatalf("welcome logged %d times, want 1", got)
	}
	if got := recorder.count(`unrecognized frame kind "mystery"`); got != 1 {
		t.Fatalf("mystery logged %d times, want 1", got)
	}
}

func TestMalformedFrameSkipped(t *testing.T) {
	node := newPushNode(t)
	recorder := &logRecorder{}
	client, err := NewClient(Config{
		NodeURL: node.srv.URL,
		GameID:  "game-1",
		APIKey:  "secret-key",
		Logf:    recorder.logf,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(client.Disconnect)

	assets := make(chan AssetUpdateEvent, 4)
	client.OnAssetUpdate(func(evt AssetUpdateEvent) { assets <- evt })

	connectReady(t, client, node)

	node.push(`this is not json`)
	node.push(`{"type":"asset_update","asset":{"asset_id":"asset-1","owner":"wallet-1","game_id":"game-1","category":"weapon","rarity":"rare","level":1}}`)

	evt := waitFor(t, assets)
	if evt.Asset.ID != "asset-1" {
		t.Fatalf("asset id = %q, want %q", evt.Asset.ID, "asset-1")
	}
	if got := recorder.count("drop malformed frame"); got != 1 {
		t.Fatalf("malformed frame logged %d times, want 1", got)
	}
	if got := client.State(); got != StateReady {
		t.Fatalf("State() = %v, want %v", got, StateReady)
	}
}

func TestDisconnectIsCleanAndIdempotent(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	var mu sync.Mutex
	var events []ConnectionStateEvent
	done := make(chan struct{}, 4)
	client.OnConnectionState(func(evt ConnectionStateEvent) {
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
		if evt.State == StateDisconnected {
			done <- struct{}{}
		}
	})

	connectReady(t, client, node)

	client.Disconnect()
	client.Disconnect()

	waitFor(t, done)

	if got := client.State(); got != StateDisconnected {
		t.Fatalf("State() = %v, want %v", got, StateDisconnected)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, evt := range events {
		if evt.Err != nil {
			t.Fatalf("clean disconnect emitted failure event: %v", evt.Err)
		}
	}
}

func TestServerDropEmitsFailureEvent(t *testing.T) {
	node := newPushNode(t)
	client := newSessionClient(t, node.srv.URL)

	drops := make(chan ConnectionStateEvent, 8)
	client.OnConnectionState(func(evt ConnectionStateEvent) {
		if evt.State == StateDisconnected {
			drops <- evt
		}
	})

	connectReady(t, client, node)

	node.closeSession()

	evt := waitFor(t, drops)
	if evt.Err == nil {
		t.Fatal("server drop emitted no error")
	}
	if CodeOf(evt.Err) != CodeTransport {
		t.Fatalf("CodeOf(evt.Err) = %q, want %q", CodeOf(evt.Err), CodeTransport)
	}
	if got := client.State(); got != StateDisconnected {
		t.Fatalf("State() = %v, want %v", got, StateDisconnected)
	}
}

func TestConnectDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	nodeURL := srv.URL
	srv.Close()

	client := newSessionClient(t, nodeURL)

	err := client.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect succeeded against a closed node")
	}
	if CodeOf(err) != CodeTransport {
		t.Fatalf("CodeOf(err) = %q, want %q", CodeOf(err), CodeTransport)
	}
	if got := client.State(); got != StateDisconnected {
		t.Fatalf("State() = %v, want %v", got, StateDisconnected)
	}
}

// logRecorder captures log lines for assertions.
type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *logRecorder) logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *logRecorder) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, line := range r.lines {
		if strings.Contains(line, substr) {
			total++
		}
	}
	return total
}
