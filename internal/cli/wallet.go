package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interverse/verse-go/keystore"
)

func init() {
	walletCmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage ledger wallets and the local keystore",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a wallet on the ledger and store it locally",
		Args:  cobra.NoArgs,
		Run:   runWalletCreate,
	}
	createCmd.Flags().String("label", "", "Human-readable label for the stored wallet")

	balanceCmd := &cobra.Command{
		Use:   "balance [address]",
		Short: "Query a wallet balance from the ledger",
		Long: "Query a wallet balance from the ledger. When the wallet is in the local\n" +
			"keystore, the stored balance is refreshed to match.",
		Args: cobra.ExactArgs(1),
		Run:  runWalletBalance,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wallets in the local keystore",
		Args:  cobra.NoArgs,
		Run:   runWalletList,
	}

	showCmd := &cobra.Command{
		Use:   "show [address]",
		Short: "Show one stored wallet",
		Args:  cobra.ExactArgs(1),
		Run:   runWalletShow,
	}

	rmCmd := &cobra.Command{
		Use:   "rm [address]",
		Short: "Remove a wallet from the local keystore",
		Long:  "Remove a wallet from the local keystore. The wallet keeps existing on the ledger.",
		Args:  cobra.ExactArgs(1),
		Run:   runWalletRm,
	}

	importKeyCmd := &cobra.Command{
		Use:   "import-key [address]",
		Short: "Seal a private key into a stored wallet",
		Long: "Seal a private key into a stored wallet. Key material comes from --key or\n" +
			"stdin and is encrypted under the passphrase before it touches disk.",
		Args: cobra.ExactArgs(1),
		Run:  runWalletImportKey,
	}
	importKeyCmd.Flags().String("key", "", "Private key material (default: read from stdin)")
	importKeyCmd.Flags().String("passphrase", "", "Passphrase sealing the key (required)")
	importKeyCmd.MarkFlagRequired("passphrase")

	walletCmd.AddCommand(createCmd, balanceCmd, listCmd, showCmd, rmCmd, importKeyCmd)
	RootCmd.AddCommand(walletCmd)
}

func runWalletCreate(cmd *cobra.Command, args []string) {
	label, _ := cmd.Flags().GetString("label")

	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	wallet, err := client.CreateWallet(cmd.Context())
	if err != nil {
		exitErr("create wallet", err)
	}

	store, err := openKeystore()
	if err != nil {
		exitErr("open keystore", err)
	}
	defer store.Close()

	stored, err := store.Put(cmd.Context(), keystore.StoredWallet{
		Address:   wallet.Address,
		Label:     label,
		Balance:   wallet.Balance,
		PublicKey: wallet.PublicKey,
	})
	if err != nil {
		exitErr("store wallet", err)
	}

	emit(stored, func() string {
		return fmt.Sprintf("created wallet %s (balance %.2f)", stored.Address, stored.Balance)
	})
}

func runWalletBalance(cmd *cobra.Command, args []string) {
	address := args[0]

	client, err := newClient()
	if err != nil {
		exitErr("configure client", err)
	}
	balance, err := client.Balance(cmd.Context(), address)
	if err != nil {
		exitErr("get balance", err)
	}

	// Refresh the stored copy when this wallet lives in the keystore.
	if store, err := openKeystore(); err == nil {
		if err := store.UpdateBalance(cmd.Context(), address, balance); err != nil && !errors.Is(err, keystore.ErrNotFound) {
			exitErr("refresh stored balance", err)
		}
		store.Close()
	}

	emit(map[string]any{"address": address, "balance": balance}, func() string {
		return fmt.Sprintf("%s: %.2f", address, balance)
	})
}

func runWalletList(cmd *cobra.Command, args []string) {
	store, err := openKeystore()
	if err != nil {
		exitErr("open keystore", err)
	}
	defer store.Close()

	wallets, err := store.List(cmd.Context())
	if err != nil {
		exitErr("list wallets", err)
	}

	emit(wallets, func() string {
		if len(wallets) == 0 {
			return "no stored wallets"
		}
		var lines []string
		for _, wallet := range wallets {
			line := fmt.Sprintf("%s\t%.2f", wallet.Address, wallet.Balance)
			if wallet.Label != "" {
				line += "\t" + wallet.Label
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	})
}

func runWalletShow(cmd *cobra.Command, args []string) {
	store, err := openKeystore()
	if err != nil {
		exitErr("open keystore", err)
	}
	defer store.Close()

	wallet, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("show wallet", err)
	}

	emit(wallet, func() string {
		sealed := "no"
		if len(wallet.SealedKey) > 0 {
			sealed = "yes"
		}
		return fmt.Sprintf("address: %s\nlabel: %s\nbalance: %.2f\nsealed key: %s",
			wallet.Address, wallet.Label, wallet.Balance, sealed)
	})
}

func runWalletRm(cmd *cobra.Command, args []string) {
	store, err := openKeystore()
	if err != nil {
		exitErr("open keystore", err)
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		exitErr("remove wallet", err)
	}
	fmt.Printf("removed %s\n", args[0])
}

func runWalletImportKey(cmd *cobra.Command, args []string) {
	address := args[0]
	keyFlag, _ := cmd.Flags().GetString("key")
	passphrase, _ := cmd.Flags().GetString("passphrase")

	material := []byte(keyFlag)
	if len(material) == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read key from stdin", err)
		}
		material = []byte(strings.TrimSpace(string(raw)))
	}
	if len(material) == 0 {
		exitErr("import key", fmt.Errorf("key material is required (--key or stdin)"))
	}

	store, err := openKeystore()
	if err != nil {
		exitErr("open keystore", err)
	}
	defer store.Close()

	wallet, err := store.Get(cmd.Context(), address)
	if err != nil {
		exitErr("load wallet", err)
	}

	sealed, err := keystore.Seal(passphrase, material)
	if err != nil {
		exitErr("seal key", err)
	}
	wallet.SealedKey = sealed
	if _, err := store.Put(cmd.Context(), wallet); err != nil {
		exitErr("store sealed key", err)
	}
	fmt.Printf("sealed key stored for %s\n", address)
}
