package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bandmatch/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
			if services.IsFatal(err) {
				fmt.Fprintln(os.Stderr, "Run `bandmatch deps` and `bandmatch config validate` to check your setup.")
			}
		}
		stop()
		os.Exit(1)
	}
}
