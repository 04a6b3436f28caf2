package verse

import (
	"context"
	"errors"
)

// SessionState identifies where the duplex session lifecycle currently is.
type SessionState int

const (
	// StateDisconnected means no duplex channel exists. New clients start
	// here and explicit disconnects and channel drops return here.
	StateDisconnected SessionState = iota
	// StateConnecting means the transport dial is in flight.
	StateConnecting
	// StateAwaitingHandshakeAck means the channel is open and the game
	// handshake is being written.
	StateAwaitingHandshakeAck
	// StateReady means the handshake was sent and push frames are flowing.
	// Readiness is optimistic: the ledger does not acknowledge handshakes.
	StateReady
	// StateClosing means an explicit disconnect is tearing the channel down.
	StateClosing
)

// String returns the lowercase name of the state.
func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAwaitingHandshakeAck:
		return "awaiting_handshake_ack"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// handshakeFrame announces the connecting game on a fresh duplex channel.
type handshakeFrame struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
}

// Connect opens the duplex push channel and sends the game handshake. It is
// a no-op when the session is not Disconnected, so concurrent calls are
// safe. Readiness is optimistic: Connect returns once the handshake frame is
// written, without waiting for any acknowledgement. There is no automatic
// reconnect; when the channel drops, observe the failure through
// OnConnectionState and call Connect again.
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return newError(CodeConfig, "connect", "client is nil")
	}

	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.closing = false
	c.unrecognized = nil
	c.mu.Unlock()
	c.connFeed.publish(ConnectionStateEvent{State: StateConnecting})

	if err := ctx.Err(); err != nil {
		return c.abortConnect(wrapError(CodeTransport, "connect", "context ended before dial", err))
	}

	conn, err := c.dial(deriveDuplexURL(c.nodeURL, c.apiKey), c.nodeURL)
	if err != nil {
		return c.abortConnect(wrapError(CodeTransport, "connect", "dial duplex channel", err))
	}
	framed := newFramedConn(conn)

	c.mu.Lock()
	if c.state != StateConnecting {
		// A disconnect raced the dial; the session is no longer wanted.
		c.mu.Unlock()
		_ = framed.Close()
		return nil
	}
	c.conn = framed
	c.state = StateAwaitingHandshakeAck
	c.mu.Unlock()
	c.connFeed.publish(ConnectionStateEvent{State: StateAwaitingHandshakeAck})

	if err := framed.writeJSON(handshakeFrame{Type: kindHandshake, GameID: c.gameID}); err != nil {
		_ = framed.Close()
		c.mu.Lock()
		if c.conn == framed {
			c.conn = nil
		}
		c.mu.Unlock()
		return c.abortConnect(wrapError(CodeTransport, "connect", "send handshake", err))
	}

	c.mu.Lock()
	if c.state != StateAwaitingHandshakeAck {
		c.mu.Unlock()
		_ = framed.Close()
		return nil
	}
	c.state = StateReady
	c.mu.Unlock()

	// Announce readiness before the read loop can deliver its first frame,
	// so connection-state subscribers never trail a push event.
	c.logf("verse: session ready for game %s", c.gameID)
	c.connFeed.publish(ConnectionStateEvent{State: StateReady})

	go c.readLoop(framed)
	return nil
}

// abortConnect rolls a failed connect attempt back to Disconnected.
func (c *Client) abortConnect(cause *Error) error {
	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
	c.logf("verse: %v", cause)
	c.connFeed.publish(ConnectionStateEvent{State: StateDisconnected, Err: cause})
	return cause
}

// Disconnect closes the duplex channel and returns once the state machine
// reads Disconnected. It is safe to call from any state, unblocks a pending
// frame read, and leaves in-flight gateway calls alone.
func (c *Client) Disconnect() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.conn = nil
	c.closing = true
	c.state = StateClosing
	c.mu.Unlock()
	c.connFeed.publish(ConnectionStateEvent{State: StateClosing})

	if conn != nil {
		_ = conn.Close()
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.mu.Unlock()
	c.connFeed.publish(ConnectionStateEvent{State: StateDisconnected})
}

// State reports the current session state.
func (c *Client) State() SessionState {
	if c == nil {
		return StateDisconnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// readLoop owns the inbound side of one duplex channel. Frames are decoded
// and dispatched one at a time on this goroutine, which is what keeps push
// delivery in arrival order.
func (c *Client) readLoop(conn *framedConn) {
	decodeErrors := 0

	for {
		var frame inboundFrame
		if err := conn.readFrame(&frame); err != nil {
			if !errors.Is(err, errMalformedFrame) {
				c.finishSession(conn, err)
				return
			}
			decodeErrors++
			c.logf("verse: drop malformed frame: %v", err)
			if decodeErrors >= maxDecodeErrorsPerSession {
				c.finishSession(conn, err)
				return
			}
			continue
		}
		decodeErrors = 0

		c.dispatchFrame(frame)
	}
}

// finishSession tears state down after the read loop stops. Explicit
// disconnects already own the state machine, so only unexpected drops emit
// a failure event.
func (c *Client) finishSession(conn *framedConn, cause error) {
	_ = conn.Close()

	c.mu.Lock()
	expected := c.closing || c.conn != conn
	if c.conn == conn {
		c.conn = nil
		c.state = StateDisconnected
	}
	c.mu.Unlock()

	if expected {
		return
	}

	wrapped := wrapError(CodeTransport, "session", "duplex channel lost", cause)
	c.logf("verse: %v", wrapped)
	c.connFeed.publish(ConnectionStateEvent{State: StateDisconnected, Err: wrapped})
}
