package styles

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/interverse/verse-go/verse"
)

// appliedStyleProperty is the asset string property recording which style
// an asset was minted under.
const appliedStyleProperty = "applied_style"

// Client is the slice of the ledger client the pipeline needs.
type Client interface {
	GameID() string
	MintAsset(ctx context.Context, owner string, props verse.MintProperties) (verse.AssetRecord, error)
	OnAssetUpdate(fn func(verse.AssetUpdateEvent)) *verse.Subscription
}

// Pipeline binds a style registry to a ledger client. It builds styled
// views with a small cache, drops cached views when the underlying asset
// or style changes, and mints assets with a style validated before any
// network call.
type Pipeline struct {
	client   Client
	registry *Registry
	sub      *verse.Subscription

	mu    sync.Mutex
	views map[viewKey]StyledAssetView
}

type viewKey struct {
	assetID string
	styleID string
}

// NewPipeline wires a pipeline to the client's asset feed and the
// registry's change hook. Call Close when done to release the
// subscription.
func NewPipeline(client Client, registry *Registry) *Pipeline {
	p := &Pipeline{
		client:   client,
		registry: registry,
		views:    make(map[viewKey]StyledAssetView),
	}
	p.sub = client.OnAssetUpdate(func(evt verse.AssetUpdateEvent) {
		p.invalidateAsset(evt.Asset.ID)
	})
	registry.OnChange(p.invalidateStyle)
	return p
}

// Close releases the pipeline's asset feed subscription.
func (p *Pipeline) Close() {
	p.sub.Unsubscribe()
}

// StyledView returns the merged view of asset under the given style,
// resolving base chains and checking game compatibility first. Views are
// cached per asset and style; a cached entry is reused only while the
// caller's record matches the snapshot it was built from, so the result is
// always a function of the asset passed in and the current registry.
func (p *Pipeline) StyledView(asset verse.AssetRecord, styleID string) (StyledAssetView, error) {
	key := viewKey{assetID: asset.ID, styleID: styleID}

	p.mu.Lock()
	cached, ok := p.views[key]
	p.mu.Unlock()
	if ok && reflect.DeepEqual(cached.Asset, asset) {
		return cached, nil
	}

	style, err := p.registry.Resolve(styleID)
	if err != nil {
		return StyledAssetView{}, err
	}
	if !style.CompatibleWith(p.client.GameID()) {
		return StyledAssetView{}, fmt.Errorf("style %q in game %q: %w", styleID, p.client.GameID(), ErrStyleIncompatible)
	}

	view := BuildView(asset, style)
	if asset.ID != "" {
		p.mu.Lock()
		p.views[key] = view
		p.mu.Unlock()
	}
	return view, nil
}

// MintWithStyle mints an asset with the style applied at birth. The style
// must be registered and compatible with the client's game; both checks
// happen before any network traffic. The minted asset carries the style id
// in its string properties, so other clients can rebuild the styled view.
func (p *Pipeline) MintWithStyle(ctx context.Context, owner string, props verse.MintProperties, styleID string) (verse.AssetRecord, error) {
	style, err := p.registry.Resolve(styleID)
	if err != nil {
		return verse.AssetRecord{}, err
	}
	if !style.CompatibleWith(p.client.GameID()) {
		return verse.AssetRecord{}, fmt.Errorf("style %q in game %q: %w", styleID, p.client.GameID(), ErrStyleIncompatible)
	}

	// Copy before tagging so the caller's map stays untouched.
	tagged := make(map[string]string, len(props.StringProperties)+1)
	for key, value := range props.StringProperties {
		tagged[key] = value
	}
	tagged[appliedStyleProperty] = style.ID
	props.StringProperties = tagged

	return p.client.MintAsset(ctx, owner, props)
}

// AppliedStyle reports the style id an asset was minted under, if any.
func AppliedStyle(asset verse.AssetRecord) (string, bool) {
	styleID, ok := asset.StringProperties[appliedStyleProperty]
	return styleID, ok && styleID != ""
}

func (p *Pipeline) invalidateAsset(assetID string) {
	if assetID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.views {
		if key.assetID == assetID {
			delete(p.views, key)
		}
	}
}

// Registry changes clear the whole cache: the changed style may be the
// base of any other, so per-style invalidation would leave stale views.
func (p *Pipeline) invalidateStyle(string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.views)
}
