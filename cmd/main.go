package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/thomas-vilte/patchrelease/internal/commands/registry"
	"github.com/thomas-vilte/patchrelease/internal/commands/resolve"
	"github.com/thomas-vilte/patchrelease/internal/commands/run"
	"github.com/thomas-vilte/patchrelease/internal/logger"
	"github.com/thomas-vilte/patchrelease/internal/ui"
	"github.com/thomas-vilte/patchrelease/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	logger.Initialize(false, false)

	app, err := newApp()
	if err != nil {
		log.Fatalf("failed to initialize the cli: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx, os.Args)
	stop()
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() (*cli.Command, error) {
	registerCommand := registry.NewRegistry()

	if err := registerCommand.Register("run", run.NewRunCommandFactory()); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("resolve", resolve.NewResolveCommandFactory()); err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:           "patch-release",
		Usage:          "Build a patched release package from a <base>-patches branch",
		Version:        version.FullVersion(),
		DefaultCommand: "run",
		Commands:       registerCommand.CreateCommands(),
	}, nil
}
