package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thep2p/go-eth-outcall/internal/command"
)

func main() {
	if err := command.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command.AppName, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := command.NewApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command.AppName, err)
		os.Exit(1)
	}
}
