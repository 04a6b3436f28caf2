// Package styles maintains per-game material styles and produces merged,
// render-ready views of ledger assets. Styles never travel to the ledger;
// they are a local projection layered on top of immutable asset records.
package styles

import (
	"errors"
	"fmt"
	"strings"

	"github.com/interverse/verse-go/verse"
)

var (
	// ErrStyleNotFound indicates the requested style id is not registered.
	ErrStyleNotFound = errors.New("style not found")

	// ErrStyleIncompatible indicates the style excludes the client's game.
	ErrStyleIncompatible = errors.New("style not compatible with game")
)

// Color override slots recognized by the view builder.
const (
	SlotPrimary   = "primary"
	SlotSecondary = "secondary"
)

// MaterialStyle describes one reusable visual treatment for assets.
//
// A style never mutates the asset it is applied to: the view builder merges
// the two into a derived StyledAssetView. CompatibleGames limits where the
// style may be applied; an empty list means every game. BaseStyle names
// another registered style whose overrides apply first.
type MaterialStyle struct {
	ID                string                 `json:"id" yaml:"id"`
	Name              string                 `json:"name" yaml:"name"`
	Description       string                 `json:"description" yaml:"description"`
	TextureOverrides  map[string]string      `json:"texture_overrides" yaml:"texture_overrides"`
	ColorOverrides    map[string]verse.Color `json:"color_overrides" yaml:"color_overrides"`
	NumericParameters map[string]float64     `json:"numeric_parameters" yaml:"numeric_parameters"`
	Tags              []string               `json:"tags" yaml:"tags"`
	CompatibleGames   []string               `json:"compatible_games" yaml:"compatible_games"`
	BaseStyle         string                 `json:"base_style" yaml:"base_style"`
}

// CompatibleWith reports whether the style may be applied in the given
// game. Styles without an explicit game list apply everywhere.
func (s MaterialStyle) CompatibleWith(gameID string) bool {
	if len(s.CompatibleGames) == 0 {
		return true
	}
	for _, candidate := range s.CompatibleGames {
		if candidate == gameID {
			return true
		}
	}
	return false
}

// HasTag reports whether the style carries the given tag.
func (s MaterialStyle) HasTag(tag string) bool {
	for _, candidate := range s.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// normalize trims identifiers and clamps override colors into range.
func (s MaterialStyle) normalize() MaterialStyle {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.BaseStyle = strings.TrimSpace(s.BaseStyle)

	if len(s.ColorOverrides) > 0 {
		clamped := make(map[string]verse.Color, len(s.ColorOverrides))
		for slot, color := range s.ColorOverrides {
			clamped[slot] = color.Clamp()
		}
		s.ColorOverrides = clamped
	}

	if len(s.Tags) > 0 {
		tags := make([]string, 0, len(s.Tags))
		for _, tag := range s.Tags {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
		s.Tags = tags
	}
	return s
}

func (s MaterialStyle) validate() error {
	if s.ID == "" {
		return fmt.Errorf("style id is required")
	}
	return nil
}
