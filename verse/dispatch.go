package verse

import "encoding/json"

// Frame kinds spoken on the duplex channel. The inbound set is closed;
// anything else is logged once per session and skipped.
const (
	kindHandshake        = "handshake"
	kindAssetUpdate      = "asset_update"
	kindNewAsset         = "new_asset"
	kindBalanceUpdate    = "balance_update"
	kindTransferComplete = "transfer_complete"
)

// inboundFrame is the tagged envelope for one pushed message. Asset update
// frames carry the record under "asset"; the remaining kinds nest their
// payload under "data".
type inboundFrame struct {
	Type  string          `json:"type"`
	Asset json.RawMessage `json:"asset"`
	Data  json.RawMessage `json:"data"`
}

type balancePayload struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
}

type transferPayload struct {
	AssetID   string `json:"asset_id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
}

// dispatchFrame classifies one inbound frame and fans it out to
// subscribers. It runs on the session read loop, so handling stays
// serialized in arrival order. Malformed payloads are logged and skipped
// without tearing the channel down.
func (c *Client) dispatchFrame(frame inboundFrame) {
	switch frame.Type {
	case kindAssetUpdate, kindNewAsset:
		// new_asset is a legacy alias some node versions still emit.
		var asset AssetRecord
		if err := json.Unmarshal(frame.Asset, &asset); err != nil {
			c.logf("verse: drop %s frame: %v", frame.Type, err)
			return
		}
		c.rememberAsset(asset)
		c.assetFeed.publish(AssetUpdateEvent{Asset: asset})
	case kindBalanceUpdate:
		var payload balancePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			c.logf("verse: drop %s frame: %v", frame.Type, err)
			return
		}
		c.balanceFeed.publish(BalanceUpdateEvent{Address: payload.Address, Balance: payload.Balance})
	case kindTransferComplete:
		var payload transferPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			c.logf("verse: drop %s frame: %v", frame.Type, err)
			return
		}
		c.transferFeed.publish(TransferCompleteEvent{
			AssetID: payload.AssetID,
			From:    payload.Sender,
			To:      payload.Recipient,
			Success: payload.Success,
		})
	default:
		c.noteUnrecognized(frame.Type)
	}
}

// noteUnrecognized logs each unknown frame kind once per session and counts
// the rest, so a chatty node cannot flood the log.
func (c *Client) noteUnrecognized(kind string) {
	c.mu.Lock()
	if c.unrecognized == nil {
		c.unrecognized = make(map[string]int)
	}
	c.unrecognized[kind]++
	first := c.unrecognized[kind] == 1
	c.mu.Unlock()

	if first {
		c.logf("verse: ignoring unrecognized frame kind %q", kind)
	}
}
