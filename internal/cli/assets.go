package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interverse/verse-go/verse"
)

func init() {
	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Mint, transfer, and inspect ledger assets",
	}

	mintCmd := &cobra.Command{
		Use:   "mint [owner-address]",
		Short: "Mint a new asset",
		Args:  cobra.ExactArgs(1),
		Run:   runAssetsMint,
	}
	addMintFlags(mintCmd)

	transferCmd := &cobra.Command{
		Use:   "transfer [asset-id] [from-address] [to-address]",
		Short: "Transfer an asset between wallets",
		Args:  cobra.ExactArgs(3),
		Run:   runAssetsTransfer,
	}

	listCmd := &cobra.Command{
		Use:   "list [address]",
		Short: "List the assets held by a wallet",
		Args:  cobra.ExactArgs(1),
		Run:   runAssetsList,
	}

	getCmd := &cobra.Command{
		Use:   "get [asset-id]",
		Short: "Fetch one asset record",
		Args:  cobra.ExactArgs(1),
		Run:   runAssetsGet,
	}

	assetsCmd.AddCommand(mintCmd, transferCmd, listCmd, getCmd)
	RootCmd.AddCommand(assetsCmd)
}

func addMintFlags(cmd *cobra.Command) {
	cmd.Flags().String("category", "", "Asset category: weapon, armor, accessory, consumable, currency, cosmetic, mount, pet")
	cmd.Flags().String("rarity", "", "Asset rarity: common, uncommon, rare, epic, legendary, mythic")
	cmd.Flags().Int("level", 1, "Asset level")
	cmd.Flags().String("model", "", "Model identifier")
	cmd.Flags().String("primary-color", "", "Primary color as hex, e.g. #ff8800")
	cmd.Flags().String("secondary-color", "", "Secondary color as hex")
	cmd.Flags().StringSlice("num", nil, "Numeric property as key=value (repeatable)")
	cmd.Flags().StringSlice("str", nil, "String property as key=value (repeatable)")
	cmd.Flags().StringSlice("tag", nil, "Asset tag (repeatable)")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("rarity")
}

// mintPropertiesFromFlags builds MintProperties from the shared mint flag
// set. Category and rarity errors surface here, before any network call.
func mintPropertiesFromFlags(cmd *cobra.Command) verse.MintProperties {
	categoryFlag, _ := cmd.Flags().GetString("category")
	rarityFlag, _ := cmd.Flags().GetString("rarity")
	level, _ := cmd.Flags().GetInt("level")
	model, _ := cmd.Flags().GetString("model")
	primaryFlag, _ := cmd.Flags().GetString("primary-color")
	secondaryFlag, _ := cmd.Flags().GetString("secondary-color")
	numPairs, _ := cmd.Flags().GetStringSlice("num")
	strPairs, _ := cmd.Flags().GetStringSlice("str")
	tags, _ := cmd.Flags().GetStringSlice("tag")

	category, err := verse.ParseCategory(categoryFlag)
	if err != nil {
		exitErr("mint", err)
	}
	rarity, err := verse.ParseRarity(rarityFlag)
	if err != nil {
		exitErr("mint", err)
	}

	props := verse.MintProperties{
		Category: category,
		Rarity:   rarity,
		Level:    level,
		ModelID:  model,
		Tags:     tags,
	}
	if primaryFlag != "" {
		if props.PrimaryColor, err = verse.ColorFromHex(primaryFlag); err != nil {
			exitErr("mint", err)
		}
	}
	if secondaryFlag != "" {
		if props.SecondaryColor, err = verse.ColorFromHex(secondaryFlag); err != nil {
			exitErr("mint", err)
		}
	}
	if len(numPairs) > 0 {
		props.NumericProperties = make(map[string]float64, len(numPairs))
		for _, pair := range numPairs {
			key, value, err := splitNumericPair(pair)
			if err != nil {
				exitErr("mint", err)
			}
			props.NumericProperties[key] = value
		}
	}
	if len(strPairs) > 0 {
		props.StringProperties = make(map[string]string, len(strPairs))
		for _, pair := range strPairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				exitErr("mint", fmt.Errorf("string property %q must be key=value", pair))
			}
			props.StringProperties[key] = value
		}
	}
	return props
}

func splitNumericPair(pair string) (string, float64, error) {
	key, raw, ok := strings.Cut(pair, "=")
	if !ok {
		return "", 0, fmt.Errorf("numeric property %q must be key=value", pair)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("numeric property %q: %w", pair, err)
	}
	return key, value, nil
}

func runAssetsMint(cmd *cobra.Command, args []string) {
	props := mintPropertiesFromFlags(cmd)

	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	asset, err := client.MintAsset(cmd.Context(), args[0], props)
	if err != nil {
		exitErr("mint asset", err)
	}

	emit(asset, func() string {
		return fmt.Sprintf("minted %s (%s %s) for %s", asset.ID, asset.Rarity, asset.Category, asset.Owner)
	})
}

func runAssetsTransfer(cmd *cobra.Command, args []string) {
	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	txID, err := client.TransferAsset(cmd.Context(), args[0], args[1], args[2])
	if err != nil {
		exitErr("transfer asset", err)
	}

	emit(map[string]string{"asset_id": args[0], "transaction_id": txID}, func() string {
		return fmt.Sprintf("transferred %s (transaction %s)", args[0], txID)
	})
}

func runAssetsList(cmd *cobra.Command, args []string) {
	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	assets, err := client.ListAssets(cmd.Context(), args[0])
	if err != nil {
		exitErr("list assets", err)
	}

	emit(assets, func() string {
		if len(assets) == 0 {
			return "no assets"
		}
		var lines []string
		for _, asset := range assets {
			lines = append(lines, fmt.Sprintf("%s\t%s\t%s\tlvl %d", asset.ID, asset.Category, asset.Rarity, asset.Level))
		}
		return strings.Join(lines, "\n")
	})
}

func runAssetsGet(cmd *cobra.Command, args []string) {
	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	asset, err := client.Asset(cmd.Context(), args[0])
	if err != nil {
		exitErr("get asset", err)
	}

	emit(asset, func() string {
		return fmt.Sprintf("%s\t%s\t%s\tlvl %d\towner %s", asset.ID, asset.Category, asset.Rarity, asset.Level, asset.Owner)
	})
}
