package verse

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies the gameplay slot an asset occupies. The set is
// closed: the ledger rejects values outside it, so the client validates
// before any network call.
type Category string

const (
	// CategoryWeapon covers swords, guns, and other damage dealers.
	CategoryWeapon Category = "weapon"
	// CategoryArmor covers protective equipment.
	CategoryArmor Category = "armor"
	// CategoryAccessory covers rings, amulets, and trinkets.
	CategoryAccessory Category = "accessory"
	// CategoryConsumable covers single-use items such as potions.
	CategoryConsumable Category = "consumable"
	// CategoryCurrency covers tradable in-game currency tokens.
	CategoryCurrency Category = "currency"
	// CategoryCosmetic covers appearance-only items.
	CategoryCosmetic Category = "cosmetic"
	// CategoryMount covers rideable creatures and vehicles.
	CategoryMount Category = "mount"
	// CategoryPet covers companion creatures.
	CategoryPet Category = "pet"
)

// Valid reports whether the category belongs to the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryWeapon, CategoryArmor, CategoryAccessory, CategoryConsumable,
		CategoryCurrency, CategoryCosmetic, CategoryMount, CategoryPet:
		return true
	}
	return false
}

// ParseCategory maps a wire value onto the closed category set.
func ParseCategory(value string) (Category, error) {
	category := Category(strings.ToLower(strings.TrimSpace(value)))
	if !category.Valid() {
		return "", newError(CodeValidation, "parse category", fmt.Sprintf("unknown category %q", value))
	}
	return category, nil
}

// Rarity grades how scarce an asset is. Like Category the set is closed.
type Rarity string

const (
	// RarityCommon is the baseline tier.
	RarityCommon Rarity = "common"
	// RarityUncommon is slightly scarce.
	RarityUncommon Rarity = "uncommon"
	// RarityRare is meaningfully scarce.
	RarityRare Rarity = "rare"
	// RarityEpic is very scarce.
	RarityEpic Rarity = "epic"
	// RarityLegendary is the top standard tier.
	RarityLegendary Rarity = "legendary"
	// RarityMythic is reserved for one-off assets.
	RarityMythic Rarity = "mythic"
)

// Valid reports whether the rarity belongs to the closed set.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityEpic,
		RarityLegendary, RarityMythic:
		return true
	}
	return false
}

// ParseRarity maps a wire value onto the closed rarity set.
func ParseRarity(value string) (Rarity, error) {
	rarity := Rarity(strings.ToLower(strings.TrimSpace(value)))
	if !rarity.Valid() {
		return "", newError(CodeValidation, "parse rarity", fmt.Sprintf("unknown rarity %q", value))
	}
	return rarity, nil
}

// AssetRecord is the ledger-side description of one minted asset.
//
// Records are immutable from the client's point of view: push frames and
// query responses replace any locally cached copy wholesale, and nothing in
// this package merges or mutates one in place.
type AssetRecord struct {
	ID                string             `json:"asset_id"`
	Owner             string             `json:"owner"`
	GameID            string             `json:"game_id"`
	Category          Category           `json:"category"`
	Rarity            Rarity             `json:"rarity"`
	Level             int                `json:"level"`
	ModelID           string             `json:"model_id"`
	PrimaryColor      Color              `json:"primary_color"`
	SecondaryColor    Color              `json:"secondary_color"`
	NumericProperties map[string]float64 `json:"numeric_properties"`
	StringProperties  map[string]string  `json:"string_properties"`
	Tags              []string           `json:"tags"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// HasTag reports whether the record carries the given tag.
func (a AssetRecord) HasTag(tag string) bool {
	for _, candidate := range a.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// MintProperties carries the caller-supplied attributes for a mint call.
type MintProperties struct {
	Category          Category
	Rarity            Rarity
	Level             int
	ModelID           string
	PrimaryColor      Color
	SecondaryColor    Color
	NumericProperties map[string]float64
	StringProperties  map[string]string
	Tags              []string
}

// NormalizeMintProperties trims free-form fields and applies mint defaults.
func NormalizeMintProperties(props MintProperties) MintProperties {
	props.ModelID = strings.TrimSpace(props.ModelID)
	if props.Level <= 0 {
		props.Level = 1
	}
	if props.PrimaryColor.IsZero() {
		props.PrimaryColor = ColorWhite
	}
	if props.SecondaryColor.IsZero() {
		props.SecondaryColor = ColorWhite
	}
	return props
}

// Validate reports whether the properties satisfy the closed category and
// rarity sets. It issues no network traffic.
func (p MintProperties) Validate() error {
	if !p.Category.Valid() {
		return newError(CodeValidation, "validate mint properties", fmt.Sprintf("unknown category %q", string(p.Category)))
	}
	if !p.Rarity.Valid() {
		return newError(CodeValidation, "validate mint properties", fmt.Sprintf("unknown rarity %q", string(p.Rarity)))
	}
	if p.Level < 0 {
		return newError(CodeValidation, "validate mint properties", "level must not be negative")
	}
	return nil
}
