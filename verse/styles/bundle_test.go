package styles

import (
	"testing"
)

const bundleYAML = `
styles:
  - id: iron
    name: Iron
    numeric_parameters:
      durability: 100
    tags: [metal]
  - id: flame-iron
    name: Flame Iron
    base_style: iron
    color_overrides:
      primary: {r: 1, g: 0.4, b: 0}
    tags: [fire]
mappings:
  - source_game: forge-quest
    target_game: sky-arena
    source_style: flame-iron
    target_style: ember
`

func TestBundleApply(t *testing.T) {
	bundle, err := ParseBundle([]byte(bundleYAML))
	if err != nil {
		t.Fatalf("parse bundle: %v", err)
	}
	if len(bundle.Styles) != 2 || len(bundle.Mappings) != 1 {
		t.Fatalf("bundle = %d styles, %d mappings, want 2 and 1", len(bundle.Styles), len(bundle.Mappings))
	}

	registry := NewRegistry()
	mappings := NewMappings()
	if err := bundle.Apply(registry, mappings); err != nil {
		t.Fatalf("apply bundle: %v", err)
	}

	// flame-iron names iron as its base; Resolve must fold the chain.
	resolved, err := registry.Resolve("flame-iron")
	if err != nil {
		t.Fatalf("resolve flame-iron: %v", err)
	}
	if resolved.NumericParameters["durability"] != 100 {
		t.Fatalf("resolved durability = %v, want base value 100", resolved.NumericParameters["durability"])
	}
	if !resolved.HasTag("metal") || !resolved.HasTag("fire") {
		t.Fatalf("resolved tags = %v, want union of base and style", resolved.Tags)
	}

	mapped, ok := mappings.Resolve("forge-quest", "sky-arena", "flame-iron")
	if !ok || mapped != "ember" {
		t.Fatalf("mapping = %q, %v, want %q, true", mapped, ok, "ember")
	}
}

func TestBundleApplyWithoutMappings(t *testing.T) {
	bundle, err := ParseBundle([]byte(bundleYAML))
	if err != nil {
		t.Fatalf("parse bundle: %v", err)
	}
	if err := bundle.Apply(NewRegistry(), nil); err != nil {
		t.Fatalf("apply bundle without mappings: %v", err)
	}
}

func TestBundleApplyRejectsInvalidStyle(t *testing.T) {
	bundle := Bundle{Styles: []MaterialStyle{{Name: "missing id"}}}
	if err := bundle.Apply(NewRegistry(), nil); err == nil {
		t.Fatal("expected apply to reject a style without an id")
	}
}

func TestParseBundleRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseBundle([]byte("styles: [")); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}
