// Package main is the entry point for the shutterctl admin CLI.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Simplici0/shutterquote/cmd/shutterctl/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
