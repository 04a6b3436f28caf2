package styles

import "github.com/interverse/verse-go/verse"

// StyledAssetView is the merged, render-ready description of one asset
// under one style.
type StyledAssetView struct {
	Asset             verse.AssetRecord
	StyleID           string
	ModelID           string
	PrimaryColor      verse.Color
	SecondaryColor    verse.Color
	Textures          map[string]string
	NumericProperties map[string]float64
	Tags              []string
}

// BuildView merges one asset record with one style into a render-ready
// view. Pass a style already resolved through Registry.Resolve when base
// chains matter.
//
// # Merging
//
// Numeric parameters overlay the asset's numeric properties key by key:
// the style wins where both define a key, and keys unique to either side
// survive. Tags are the union, asset tags first, without duplicates. Color
// overrides replace the asset's primary and secondary colors by slot name.
// Texture overrides pass through as the view's texture set.
//
// # Purity
//
// The asset record is never mutated and no network traffic is issued;
// applying a style is strictly a local projection. Building the same view
// from the same inputs yields equal values.
func BuildView(asset verse.AssetRecord, style MaterialStyle) StyledAssetView {
	view := StyledAssetView{
		Asset:             asset,
		StyleID:           style.ID,
		ModelID:           asset.ModelID,
		PrimaryColor:      asset.PrimaryColor,
		SecondaryColor:    asset.SecondaryColor,
		Textures:          mergeMaps(nil, style.TextureOverrides),
		NumericProperties: mergeMaps(asset.NumericProperties, style.NumericParameters),
		Tags:              unionTags(asset.Tags, style.Tags),
	}
	if color, ok := style.ColorOverrides[SlotPrimary]; ok {
		view.PrimaryColor = color
	}
	if color, ok := style.ColorOverrides[SlotSecondary]; ok {
		view.SecondaryColor = color
	}
	return view
}

// mergeMaps returns a fresh map holding base overlaid by top. Top wins per
// key. Nil in, nil out when both sides are empty.
func mergeMaps[V any](base, top map[string]V) map[string]V {
	if len(base) == 0 && len(top) == 0 {
		return nil
	}
	merged := make(map[string]V, len(base)+len(top))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range top {
		merged[key] = value
	}
	return merged
}

// unionTags returns base followed by tags unique to top, dropping
// duplicates while preserving first-seen order.
func unionTags(base, top []string) []string {
	if len(base) == 0 && len(top) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(base)+len(top))
	union := make([]string, 0, len(base)+len(top))
	for _, tag := range base {
		if !seen[tag] {
			seen[tag] = true
			union = append(union, tag)
		}
	}
	for _, tag := range top {
		if !seen[tag] {
			seen[tag] = true
			union = append(union, tag)
		}
	}
	return union
}
