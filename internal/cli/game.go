package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Inspect the configured game registration",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the configured game id against the ledger",
		Args:  cobra.NoArgs,
		Run:   runGameVerify,
	}

	gameCmd.AddCommand(verifyCmd)
	RootCmd.AddCommand(gameCmd)
}

func runGameVerify(cmd *cobra.Command, args []string) {
	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	info, err := client.VerifyGame(cmd.Context())
	if err != nil {
		exitErr("verify game", err)
	}

	emit(info, func() string {
		status := "not verified"
		if info.Verified {
			status = "verified"
		}
		return fmt.Sprintf("%s (%s): %s", info.GameID, info.Name, status)
	})
}
