// Package main starts the versectl ledger client CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/interverse/verse-go/internal/cli"
	platformcmd "github.com/interverse/verse-go/internal/platform/cmd"
)

func main() {
	log.SetPrefix("[VERSECTL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceVersectl, func(ctx context.Context) error {
		return cli.RootCmd.ExecuteContext(ctx)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
