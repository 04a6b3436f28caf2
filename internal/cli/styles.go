package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interverse/verse-go/verse/styles"
)

var bundlePath string

func init() {
	stylesCmd := &cobra.Command{
		Use:   "styles",
		Short: "Work with material style bundles",
		Long: "Work with material style bundles. Styles are local presentation data:\n" +
			"they decorate ledger assets without ever mutating the canonical record.",
	}
	stylesCmd.PersistentFlags().StringVarP(&bundlePath, "bundle", "b", "", "Style bundle YAML file (required)")
	stylesCmd.MarkPersistentFlagRequired("bundle")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the styles in a bundle",
		Args:  cobra.NoArgs,
		Run:   runStylesList,
	}
	listCmd.Flags().String("tag", "", "Only list styles carrying this tag")
	listCmd.Flags().String("for-game", "", "Only list styles compatible with this game id")

	viewCmd := &cobra.Command{
		Use:   "view [asset-id] [style-id]",
		Short: "Render the styled view of a ledger asset",
		Args:  cobra.ExactArgs(2),
		Run:   runStylesView,
	}

	mintCmd := &cobra.Command{
		Use:   "mint [owner-address] [style-id]",
		Short: "Mint an asset with a style applied at birth",
		Long: "Mint an asset with a style applied at birth. The style must exist in the\n" +
			"bundle and be compatible with the configured game; both checks happen\n" +
			"before the mint call reaches the ledger.",
		Args: cobra.ExactArgs(2),
		Run:  runStylesMint,
	}
	addMintFlags(mintCmd)

	mapCmd := &cobra.Command{
		Use:   "map [source-game] [target-game] [style-id]",
		Short: "Translate a style id between games using bundle mappings",
		Args:  cobra.ExactArgs(3),
		Run:   runStylesMap,
	}

	stylesCmd.AddCommand(listCmd, viewCmd, mintCmd, mapCmd)
	RootCmd.AddCommand(stylesCmd)
}

// loadBundle parses the bundle file and applies it to a fresh registry and
// mapping table.
func loadBundle() (*styles.Registry, *styles.Mappings) {
	raw, err := os.ReadFile(bundlePath)
	if err != nil {
		exitErr("read bundle", err)
	}
	bundle, err := styles.ParseBundle(raw)
	if err != nil {
		exitErr("parse bundle", err)
	}

	registry := styles.NewRegistry()
	mappings := styles.NewMappings()
	if err := bundle.Apply(registry, mappings); err != nil {
		exitErr("apply bundle", err)
	}
	return registry, mappings
}

func runStylesList(cmd *cobra.Command, args []string) {
	tag, _ := cmd.Flags().GetString("tag")
	forGame, _ := cmd.Flags().GetString("for-game")

	registry, _ := loadBundle()
	listed := registry.List()
	if tag != "" {
		listed = registry.ByTag(tag)
	}
	if forGame != "" {
		var matched []styles.MaterialStyle
		for _, style := range listed {
			if style.CompatibleWith(forGame) {
				matched = append(matched, style)
			}
		}
		listed = matched
	}

	emit(listed, func() string {
		if len(listed) == 0 {
			return "no styles"
		}
		var lines []string
		for _, style := range listed {
			line := style.ID
			if style.Name != "" {
				line += "\t" + style.Name
			}
			if len(style.Tags) > 0 {
				line += "\t[" + strings.Join(style.Tags, ", ") + "]"
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	})
}

func runStylesView(cmd *cobra.Command, args []string) {
	assetID, styleID := args[0], args[1]
	registry, _ := loadBundle()

	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	asset, err := client.Asset(cmd.Context(), assetID)
	if err != nil {
		exitErr("get asset", err)
	}

	pipeline := styles.NewPipeline(client, registry)
	defer pipeline.Close()

	view, err := pipeline.StyledView(asset, styleID)
	if err != nil {
		exitErr("styled view", err)
	}

	emit(view, func() string {
		return fmt.Sprintf("%s styled as %s: model %s, primary %s, secondary %s",
			view.Asset.ID, view.StyleID, view.ModelID,
			view.PrimaryColor.Hex(false), view.SecondaryColor.Hex(false))
	})
}

func runStylesMint(cmd *cobra.Command, args []string) {
	owner, styleID := args[0], args[1]
	props := mintPropertiesFromFlags(cmd)
	registry, _ := loadBundle()

	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}

	pipeline := styles.NewPipeline(client, registry)
	defer pipeline.Close()

	asset, err := pipeline.MintWithStyle(cmd.Context(), owner, props, styleID)
	if err != nil {
		exitErr("mint with style", err)
	}

	emit(asset, func() string {
		return fmt.Sprintf("minted %s styled as %s for %s", asset.ID, styleID, asset.Owner)
	})
}

func runStylesMap(cmd *cobra.Command, args []string) {
	sourceGame, targetGame, styleID := args[0], args[1], args[2]
	_, mappings := loadBundle()

	mapped, ok := mappings.Resolve(sourceGame, targetGame, styleID)
	if !ok {
		exitErr("map style", fmt.Errorf("no mapping for style %q from %s to %s", styleID, sourceGame, targetGame))
	}

	emit(map[string]string{"source_style": styleID, "target_style": mapped}, func() string {
		return mapped
	})
}
