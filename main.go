package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dpshade/child-issue/internal/cli"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewApp(version), os.Args[1:])
	stop()
	os.Exit(code)
}
