package ports

import (
	"context"
	"io"
)

// Stdio bundles the standard streams of a process.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes compiled script executables.
//
//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type Runner interface {
	// Run executes path with args and waits for it to exit.
	// A non-zero exit wraps domain.ErrProcessFailed with the exit code attached.
	Run(ctx context.Context, path string, args []string, stdio Stdio) error
}
