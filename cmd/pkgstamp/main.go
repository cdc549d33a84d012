package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/indaco/pkgstamp/internal/cli"
	"github.com/indaco/pkgstamp/internal/printer"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		printer.PrintError(err.Error())
		os.Exit(1)
	}
}

// runCLI runs the root command with args, cancelling on SIGINT or SIGTERM.
func runCLI(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.New().Run(ctx, args)
}
