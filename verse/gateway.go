package verse

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer instruments gateway calls. Spans are no-ops unless the embedding
// process registered a tracer provider.
var tracer = otel.Tracer("verse")

// responseEnvelope is the uniform wrapper every ledger HTTP endpoint speaks.
type responseEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// PendingOperation describes one in-flight gateway call. Tokens are unique
// per call and lexically ordered by start time.
type PendingOperation struct {
	Token     string
	Kind      string
	Method    string
	Path      string
	TraceID   string
	StartedAt time.Time
	Deadline  time.Time
}

// trackOperation registers a gateway call in the pending set and returns the
// release func the caller defers.
func (c *Client) trackOperation(ctx context.Context, kind, method, path string) (PendingOperation, func()) {
	now := c.clock()
	pending := PendingOperation{
		Token:     c.newToken(),
		Kind:      kind,
		Method:    method,
		Path:      path,
		StartedAt: now,
	}
	if c.callTimeout > 0 {
		pending.Deadline = now.Add(c.callTimeout)
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		pending.TraceID = sc.TraceID().String()
	}

	c.pendingMu.Lock()
	c.pending[pending.Token] = pending
	c.pendingMu.Unlock()

	return pending, func() {
		c.pendingMu.Lock()
		delete(c.pending, pending.Token)
		c.pendingMu.Unlock()
	}
}

// PendingOperations snapshots the in-flight gateway calls, oldest first.
func (c *Client) PendingOperations() []PendingOperation {
	if c == nil {
		return nil
	}
	c.pendingMu.Lock()
	ops := make([]PendingOperation, 0, len(c.pending))
	for _, op := range c.pending {
		ops = append(ops, op)
	}
	c.pendingMu.Unlock()

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].StartedAt.Equal(ops[j].StartedAt) {
			return ops[i].Token < ops[j].Token
		}
		return ops[i].StartedAt.Before(ops[j].StartedAt)
	})
	return ops
}

// doJSON performs one authenticated round trip against the ledger and
// decodes the envelope. The out value receives the envelope data when both
// are present.
func (c *Client) doJSON(ctx context.Context, op PendingOperation, body any, out any) (err error) {
	ctx, span := tracer.Start(ctx, "verse."+op.Kind, trace.WithAttributes(
		attribute.String("verse.operation", op.Kind),
		attribute.String("verse.correlation_token", op.Token),
		attribute.String("http.request.method", op.Method),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, string(CodeOf(err)))
		}
		span.End()
	}()

	callCtx := ctx
	cancel := func() {}
	if c.callTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, c.callTimeout)
	}
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return wrapError(CodeUnknown, op.Kind, "encode request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(callCtx, op.Method, c.nodeURL+op.Path, reader)
	if err != nil {
		return wrapError(CodeTransport, op.Kind, "build request", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return wrapError(CodeTimeout, op.Kind, fmt.Sprintf("no response within %s", c.callTimeout), err)
		}
		return wrapError(CodeTransport, op.Kind, "call ledger", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		message := strings.TrimSpace(string(raw))
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return &Error{
			Code:    CodeOperation,
			Op:      op.Kind,
			Message: fmt.Sprintf("ledger status %d: %s", resp.StatusCode, message),
			Status:  resp.StatusCode,
		}
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return wrapError(CodeProtocol, op.Kind, "decode response envelope", err)
	}
	if !envelope.Success {
		message := strings.TrimSpace(envelope.Message)
		if message == "" {
			message = "ledger rejected the operation"
		}
		return &Error{Code: CodeOperation, Op: op.Kind, Message: message, Status: resp.StatusCode}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return wrapError(CodeProtocol, op.Kind, "decode response data", err)
		}
	}
	return nil
}

// CreateWallet asks the ledger to provision a new wallet.
func (c *Client) CreateWallet(ctx context.Context) (WalletRecord, error) {
	if c == nil {
		return WalletRecord{}, newError(CodeConfig, "create_wallet", "client is nil")
	}
	pending, done := c.trackOperation(ctx, "create_wallet", http.MethodPost, "/verse/wallet/create")
	defer done()

	var wallet WalletRecord
	if err := c.doJSON(ctx, pending, nil, &wallet); err != nil {
		return WalletRecord{}, err
	}
	return wallet, nil
}

// Balance fetches the current balance for one wallet address. A successful
// query also publishes a balance update event, so feed subscribers observe
// polled balances alongside pushed ones.
func (c *Client) Balance(ctx context.Context, address string) (float64, error) {
	if c == nil {
		return 0, newError(CodeConfig, "get_balance", "client is nil")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, newError(CodeValidation, "get_balance", "address is required")
	}
	pending, done := c.trackOperation(ctx, "get_balance", http.MethodGet, "/verse/wallet/"+url.PathEscape(address)+"/balance")
	defer done()

	var payload balancePayload
	if err := c.doJSON(ctx, pending, nil, &payload); err != nil {
		return 0, err
	}
	c.balanceFeed.publish(BalanceUpdateEvent{Address: address, Balance: payload.Balance})
	return payload.Balance, nil
}

type mintMetadata struct {
	Category          Category           `json:"category"`
	Rarity            Rarity             `json:"rarity"`
	Level             int                `json:"level"`
	ModelID           string             `json:"model_id"`
	PrimaryColor      Color              `json:"primary_color"`
	SecondaryColor    Color              `json:"secondary_color"`
	NumericProperties map[string]float64 `json:"numeric_properties"`
	StringProperties  map[string]string  `json:"string_properties"`
	Tags              []string           `json:"tags"`
}

type mintRequest struct {
	Owner     string       `json:"owner"`
	GameID    string       `json:"game_id"`
	AssetType Category     `json:"asset_type"`
	Metadata  mintMetadata `json:"metadata"`
}

// MintAsset creates a new asset owned by owner. Category and rarity must
// come from the closed sets; validation happens before any network traffic.
// A successful mint caches the record and publishes an asset update event.
func (c *Client) MintAsset(ctx context.Context, owner string, props MintProperties) (AssetRecord, error) {
	if c == nil {
		return AssetRecord{}, newError(CodeConfig, "mint_asset", "client is nil")
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return AssetRecord{}, newError(CodeValidation, "mint_asset", "owner address is required")
	}
	props = NormalizeMintProperties(props)
	if err := props.Validate(); err != nil {
		return AssetRecord{}, err
	}

	pending, done := c.trackOperation(ctx, "mint_asset", http.MethodPost, "/verse/assets/mint")
	defer done()

	request := mintRequest{
		Owner:     owner,
		GameID:    c.gameID,
		AssetType: props.Category,
		Metadata: mintMetadata{
			Category:          props.Category,
			Rarity:            props.Rarity,
			Level:             props.Level,
			ModelID:           props.ModelID,
			PrimaryColor:      props.PrimaryColor,
			SecondaryColor:    props.SecondaryColor,
			NumericProperties: props.NumericProperties,
			StringProperties:  props.StringProperties,
			Tags:              props.Tags,
		},
	}

	var asset AssetRecord
	if err := c.doJSON(ctx, pending, request, &asset); err != nil {
		return AssetRecord{}, err
	}
	c.rememberAsset(asset)
	c.assetFeed.publish(AssetUpdateEvent{Asset: asset})
	return asset, nil
}

type transferRequest struct {
	AssetID string `json:"asset_id"`
	From    string `json:"from_address"`
	To      string `json:"to_address"`
}

type transferData struct {
	TransactionID string `json:"transaction_id"`
}

// TransferAsset moves an asset between wallets and returns the settling
// transaction id. Every issued attempt publishes exactly one transfer
// complete event, successful or not, so subscribers observe the resolution
// without polling. Validation failures happen before the attempt and
// publish nothing.
func (c *Client) TransferAsset(ctx context.Context, assetID, from, to string) (string, error) {
	if c == nil {
		return "", newError(CodeConfig, "transfer_asset", "client is nil")
	}
	assetID = strings.TrimSpace(assetID)
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if assetID == "" {
		return "", newError(CodeValidation, "transfer_asset", "asset id is required")
	}
	if from == "" || to == "" {
		return "", newError(CodeValidation, "transfer_asset", "sender and recipient addresses are required")
	}

	pending, done := c.trackOperation(ctx, "transfer_asset", http.MethodPost, "/verse/assets/transfer")
	defer done()

	var data transferData
	err := c.doJSON(ctx, pending, transferRequest{AssetID: assetID, From: from, To: to}, &data)
	event := TransferCompleteEvent{AssetID: assetID, From: from, To: to, Success: err == nil}
	if err != nil {
		event.Message = err.Error()
	}
	c.transferFeed.publish(event)
	if err != nil {
		return "", err
	}
	return data.TransactionID, nil
}

type assetListData struct {
	Assets []AssetRecord `json:"assets"`
}

// ListAssets returns the assets held by one wallet, in ledger order. Each
// returned record replaces the cached copy wholesale.
func (c *Client) ListAssets(ctx context.Context, address string) ([]AssetRecord, error) {
	if c == nil {
		return nil, newError(CodeConfig, "list_assets", "client is nil")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, newError(CodeValidation, "list_assets", "address is required")
	}
	pending, done := c.trackOperation(ctx, "list_assets", http.MethodGet, "/verse/wallet/"+url.PathEscape(address)+"/assets")
	defer done()

	var data assetListData
	if err := c.doJSON(ctx, pending, nil, &data); err != nil {
		return nil, err
	}
	for _, asset := range data.Assets {
		c.rememberAsset(asset)
	}
	return data.Assets, nil
}

// Asset fetches one asset record by id and refreshes the cached copy.
func (c *Client) Asset(ctx context.Context, assetID string) (AssetRecord, error) {
	if c == nil {
		return AssetRecord{}, newError(CodeConfig, "get_asset", "client is nil")
	}
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return AssetRecord{}, newError(CodeValidation, "get_asset", "asset id is required")
	}
	pending, done := c.trackOperation(ctx, "get_asset", http.MethodGet, "/verse/assets/"+url.PathEscape(assetID))
	defer done()

	var asset AssetRecord
	if err := c.doJSON(ctx, pending, nil, &asset); err != nil {
		return AssetRecord{}, err
	}
	c.rememberAsset(asset)
	return asset, nil
}

type transactionListData struct {
	Transactions []Transaction `json:"transactions"`
}

// TransactionHistory returns the ledger history for one wallet address.
func (c *Client) TransactionHistory(ctx context.Context, address string) ([]Transaction, error) {
	if c == nil {
		return nil, newError(CodeConfig, "transaction_history", "client is nil")
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, newError(CodeValidation, "transaction_history", "address is required")
	}
	pending, done := c.trackOperation(ctx, "transaction_history", http.MethodGet, "/verse/transactions/"+url.PathEscape(address))
	defer done()

	var data transactionListData
	if err := c.doJSON(ctx, pending, nil, &data); err != nil {
		return nil, err
	}
	return data.Transactions, nil
}

// VerifyGame checks that the configured game id is registered with the
// ledger and returns its registration record.
func (c *Client) VerifyGame(ctx context.Context) (GameInfo, error) {
	if c == nil {
		return GameInfo{}, newError(CodeConfig, "verify_game", "client is nil")
	}
	pending, done := c.trackOperation(ctx, "verify_game", http.MethodGet, "/verse/games/verify")
	defer done()

	var info GameInfo
	if err := c.doJSON(ctx, pending, nil, &info); err != nil {
		return GameInfo{}, err
	}
	return info, nil
}
