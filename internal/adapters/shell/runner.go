// Package shell runs compiled script executables, attached to a pseudo-terminal when interactive.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// Runner implements ports.Runner with os/exec and, for terminals, a pty.
type Runner struct {
	logger ports.Logger
	// Env is appended to the process environment.
	Env []string
}

var _ ports.Runner = (*Runner)(nil)

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes path with args and waits for it to exit.
func (r *Runner) Run(ctx context.Context, path string, args []string, stdio ports.Stdio) error {
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // path is a compiled artifact
	cmd.Env = append(os.Environ(), r.Env...)

	var err error
	if f, ok := terminal(stdio.Stdin); ok {
		err = r.runPTY(cmd, f, stdio.Stdout)
	} else {
		cmd.Stdin = stdio.Stdin
		cmd.Stdout = stdio.Stdout
		cmd.Stderr = stdio.Stderr
		if err = cmd.Start(); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "path", path)
		}
		err = cmd.Wait()
	}

	return exitError(err, path)
}

// runPTY attaches cmd to a new pty, puts the controlling terminal in raw mode and
// forwards window size changes until the process exits.
func (r *Runner) runPTY(cmd *exec.Cmd, tty *os.File, stdout io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "path", cmd.Path)
	}
	defer func() { _ = ptmx.Close() }()

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	go func() {
		for range resize {
			if err := pty.InheritSize(tty, ptmx); err != nil {
				r.logger.Warn("failed to resize pty: " + err.Error())
			}
		}
	}()
	resize <- syscall.SIGWINCH

	state, err := term.MakeRaw(int(tty.Fd()))
	if err == nil {
		defer func() { _ = term.Restore(int(tty.Fd()), state) }()
	}

	go func() { _, _ = io.Copy(ptmx, tty) }()

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		_, _ = io.Copy(stdout, ptmx)
	}()

	err = cmd.Wait()
	// The copy ends with EIO once the child side of the pty is gone.
	<-ioDone
	signal.Stop(resize)
	close(resize)
	return err
}

func terminal(r io.Reader) (*os.File, bool) {
	f, ok := r.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

func exitError(err error, path string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return zerr.With(zerr.With(domain.WrapKind(err, domain.ErrProcessFailed), "exit_code", exitErr.ExitCode()), "path", path)
	}
	return zerr.With(domain.WrapKind(err, domain.ErrProcessFailed), "path", path)
}

// ExitCode extracts the exit code from an error returned by Run, or -1.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
