package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/interverse/verse-go/verse"
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream ledger push notifications until interrupted",
		Long: "Stream ledger push notifications until interrupted. Connects the duplex\n" +
			"channel, prints every asset, balance, and transfer event as it arrives,\n" +
			"and disconnects cleanly on Ctrl-C.",
		Args: cobra.NoArgs,
		Run:  runWatch,
	}
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}

	client.OnAssetUpdate(func(evt verse.AssetUpdateEvent) {
		fmt.Printf("asset %s: %s %s owned by %s\n",
			evt.Asset.ID, evt.Asset.Rarity, evt.Asset.Category, evt.Asset.Owner)
	})
	client.OnBalanceUpdate(func(evt verse.BalanceUpdateEvent) {
		fmt.Printf("balance %s: %.2f\n", evt.Address, evt.Balance)
	})
	client.OnTransferComplete(func(evt verse.TransferCompleteEvent) {
		outcome := "ok"
		if !evt.Success {
			outcome = "failed"
		}
		fmt.Printf("transfer %s: %s -> %s (%s)\n", evt.AssetID, evt.From, evt.To, outcome)
	})
	client.OnConnectionState(func(evt verse.ConnectionStateEvent) {
		if evt.Err != nil {
			fmt.Printf("session %s: %v\n", evt.State, evt.Err)
			return
		}
		fmt.Printf("session %s\n", evt.State)
	})

	ctx := cmd.Context()
	if err := client.Connect(ctx); err != nil {
		exitErr("connect", err)
	}

	<-ctx.Done()
	client.Disconnect()
}
