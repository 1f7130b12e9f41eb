package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/svg2png/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
