package verse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// dialFunc opens the duplex channel. Tests point it at an httptest node;
// production clients dial the derived ledger address.
type dialFunc func(wsURL, origin string) (*websocket.Conn, error)

// newWebSocketDialer builds the production dialer. The api key rides both
// the query string and the header so either server convention works.
func newWebSocketDialer(apiKey string, timeout time.Duration) dialFunc {
	return func(wsURL, origin string) (*websocket.Conn, error) {
		config, err := websocket.NewConfig(wsURL, origin)
		if err != nil {
			return nil, err
		}
		config.Header = make(http.Header)
		config.Header.Set(apiKeyHeader, apiKey)
		if timeout > 0 {
			config.Dialer = &net.Dialer{Timeout: timeout}
		}
		return websocket.DialConfig(config)
	}
}

// deriveDuplexURL rewrites the ledger base URL into its push channel
// address: http becomes ws, https becomes wss, trailing slashes are
// stripped, and the fixed /ws endpoint is appended with the api key as a
// query parameter.
func deriveDuplexURL(baseURL, apiKey string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws?api_key=" + url.QueryEscape(apiKey)
}

// errMalformedFrame marks a message that arrived intact but did not decode
// as a JSON frame. The read loop skips these instead of dropping the
// channel.
var errMalformedFrame = errors.New("malformed frame")

// framedConn exchanges JSON frames over one duplex channel. Each frame is
// one websocket message, so a malformed frame never corrupts the next one.
// Writes are serialized under a mutex; reads belong to the read loop.
type framedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newFramedConn(conn *websocket.Conn) *framedConn {
	return &framedConn{conn: conn}
}

func (f *framedConn) writeJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return websocket.JSON.Send(f.conn, v)
}

func (f *framedConn) readFrame(frame *inboundFrame) error {
	var raw []byte
	if err := websocket.Message.Receive(f.conn, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, frame); err != nil {
		return fmt.Errorf("%w: %v", errMalformedFrame, err)
	}
	return nil
}

func (f *framedConn) Close() error {
	return f.conn.Close()
}
