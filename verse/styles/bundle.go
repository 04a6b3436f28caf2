package styles

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Bundle is a portable set of styles plus cross-game mappings, typically
// shipped as a YAML file alongside game content.
type Bundle struct {
	Styles   []MaterialStyle `json:"styles" yaml:"styles"`
	Mappings []MappingRule   `json:"mappings" yaml:"mappings"`
}

// MappingRule is one cross-game style correspondence in a bundle.
type MappingRule struct {
	SourceGame  string `json:"source_game" yaml:"source_game"`
	TargetGame  string `json:"target_game" yaml:"target_game"`
	SourceStyle string `json:"source_style" yaml:"source_style"`
	TargetStyle string `json:"target_style" yaml:"target_style"`
}

// ParseBundle decodes a YAML style bundle.
func ParseBundle(data []byte) (Bundle, error) {
	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return Bundle{}, fmt.Errorf("parse style bundle: %w", err)
	}
	return bundle, nil
}

// Apply registers every style and mapping in the bundle. Styles apply in
// bundle order, so an entry may name an earlier one as its base. A nil
// mappings table skips the mapping rules.
func (b Bundle) Apply(registry *Registry, mappings *Mappings) error {
	for _, style := range b.Styles {
		if err := registry.Register(style); err != nil {
			return fmt.Errorf("register style %q: %w", style.ID, err)
		}
	}
	if mappings == nil {
		return nil
	}
	for _, rule := range b.Mappings {
		mappings.Register(rule.SourceGame, rule.TargetGame, rule.SourceStyle, rule.TargetStyle)
	}
	return nil
}
