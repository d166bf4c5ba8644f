//go:build !testcoverage

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mailtm/client-go/internal/config"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args, DefaultConfig(), settings); err != nil {
		stop()
		fatal("%v", err)
	}
}
