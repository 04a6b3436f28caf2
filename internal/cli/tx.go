package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect ledger transactions",
	}

	historyCmd := &cobra.Command{
		Use:   "history [address]",
		Short: "Show the transaction history for a wallet",
		Args:  cobra.ExactArgs(1),
		Run:   runTxHistory,
	}

	txCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(txCmd)
}

func runTxHistory(cmd *cobra.Command, args []string) {
	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	transactions, err := client.TransactionHistory(cmd.Context(), args[0])
	if err != nil {
		exitErr("transaction history", err)
	}

	emit(transactions, func() string {
		if len(transactions) == 0 {
			return "no transactions"
		}
		var lines []string
		for _, tx := range transactions {
			lines = append(lines, fmt.Sprintf("%s\t%s\t%s\t%.2f\t%s -> %s",
				tx.Timestamp.Format("2006-01-02 15:04:05"), tx.Type, tx.Status, tx.Amount, tx.Sender, tx.Recipient))
		}
		return strings.Join(lines, "\n")
	})
}
