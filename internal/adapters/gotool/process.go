package gotool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// waitDelay bounds how long Wait keeps draining output after the compiler was killed.
const waitDelay = time.Second

// process is a running compiler whose output is drained on dedicated goroutines.
type process struct {
	cmd     *exec.Cmd
	parent  context.Context
	runCtx  context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	outW, errW     *io.PipeWriter
	drain          errgroup.Group
	stdout, stderr bytes.Buffer
}

// output is what a finished compiler printed.
type output struct {
	stdout   string
	stderr   string
	exitCode int
}

func (b *Backend) start(ctx context.Context, dir string, args []string) (*process, error) {
	path, err := lookPath(b.cfg.Command)
	if err != nil {
		return nil, err
	}
	timeout := b.cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultCompileTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	cmd := exec.CommandContext(runCtx, path, args...) //nolint:gosec // command comes from configuration
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), b.cfg.Env...)
	cmd.WaitDelay = waitDelay

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		cancel()
		_ = outW.Close()
		_ = errW.Close()
		return nil, zerr.With(unavailable(zerr.Wrap(err, domain.ErrProcessStartFailed.Error())), "command", path)
	}

	p := &process{
		cmd:     cmd,
		parent:  ctx,
		runCtx:  runCtx,
		cancel:  cancel,
		timeout: timeout,
		outW:    outW,
		errW:    errW,
	}
	p.drain.Go(func() error {
		_, err := io.Copy(&p.stdout, outR)
		return err
	})
	p.drain.Go(func() error {
		_, err := io.Copy(&p.stderr, errR)
		return err
	})
	return p, nil
}

// wait blocks until the compiler exits and its output is drained. A non-zero exit is
// reported in the output, not as an error.
func (p *process) wait() (*output, error) {
	defer p.cancel()

	waitErr := p.cmd.Wait()
	_ = p.outW.Close()
	_ = p.errW.Close()
	drainErr := p.drain.Wait()

	out := &output{stdout: p.stdout.String(), stderr: p.stderr.String()}

	if err := p.parent.Err(); err != nil {
		return out, err
	}
	switch p.runCtx.Err() {
	case context.DeadlineExceeded:
		err := zerr.With(unavailable(zerr.New("compiler timed out")), "command", p.cmd.Path)
		return out, zerr.With(err, "timeout", p.timeout.String())
	case context.Canceled:
		return out, context.Canceled
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		out.exitCode = exitErr.ExitCode()
		return out, nil
	}
	if waitErr != nil {
		return out, zerr.With(unavailable(waitErr), "command", p.cmd.Path)
	}
	if drainErr != nil {
		return out, zerr.With(unavailable(drainErr), "command", p.cmd.Path)
	}
	return out, nil
}

// diagnostics parses the compiler output. A failed exit without any parsed error still
// yields one error diagnostic.
func (o *output) diagnostics(lines *domain.LineMap) domain.Diagnostics {
	text := o.stderr
	if o.stdout != "" {
		text += "\n" + o.stdout
	}
	ds := compiler.ParseDiagnostics(text, lines)
	if o.exitCode != 0 && !ds.HasErrors() {
		ds = append(ds, domain.Diagnostic{Message: "compiler exited with status " + strconv.Itoa(o.exitCode)})
	}
	return ds
}
