package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/yukikurage/taskmanager/internal/cli"
	"github.com/yukikurage/taskmanager/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()
	if err := cli.Run(ctx, os.Args[1:], cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "taskctl: %v\n", err)
		stop()
		if cli.IsLoginRequired(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
