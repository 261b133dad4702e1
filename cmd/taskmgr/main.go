// Package main is the entry point for the taskmgr CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskmgr/internal/backend/restapi"
	"taskmgr/internal/cli"
	"taskmgr/internal/commands"
	"taskmgr/internal/config"
	"taskmgr/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The client shares the dispatcher's session store so a 401 logs out
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return restapi.New(cfg, cfg.Session), nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	os.Exit(dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
