// Package main is the entry point for the gscript script runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grindlemire/graft"
	"go.trai.ch/gscript/cmd/gscript/commands"
	"go.trai.ch/gscript/internal/adapters/shell"
	"go.trai.ch/gscript/internal/app"
	"go.trai.ch/gscript/internal/core/domain"
	_ "go.trai.ch/gscript/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer flushCancel()
		_ = components.App.Close(flushCtx)
	}()

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		return exitCode(err, components)
	}
	return 0
}

func exitCode(err error, components *app.Components) int {
	switch {
	case errors.Is(err, domain.ErrCompile):
		// Diagnostics were already printed.
		return 1
	case errors.Is(err, domain.ErrProcessFailed):
		if code := shell.ExitCode(err); code > 0 {
			return code
		}
	}
	components.Logger.Error(err)
	return 1
}
