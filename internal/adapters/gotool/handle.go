package gotool

import (
	"os"
	"sync/atomic"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CompileHandle = (*handle)(nil)

// handle tracks one compiler run. Failed and cancelled runs remove their output.
type handle struct {
	proc     *process
	srcDir   string
	stage    string
	ownStage bool
	output   string
	artifact *domain.Artifact
	lines    *domain.LineMap

	done      chan struct{}
	result    *domain.CompileResult
	err       error
	cancelled atomic.Bool
}

func finished(res *domain.CompileResult) *handle {
	h := &handle{done: make(chan struct{}), result: res}
	close(h.done)
	return h
}

// Wait implements ports.CompileHandle.
func (h *handle) Wait() (*domain.CompileResult, error) {
	<-h.done
	return h.result, h.err
}

// Cancel kills the compiler. Wait then reports ErrCompileCancelled.
func (h *handle) Cancel() {
	if h.proc == nil {
		return
	}
	h.cancelled.Store(true)
	h.proc.cancel()
}

func (h *handle) run() {
	defer close(h.done)
	defer func() { _ = os.RemoveAll(h.srcDir) }()

	out, err := h.proc.wait()
	switch {
	case h.cancelled.Load():
		h.discard()
		h.err = zerr.With(domain.Detail(domain.ErrCompileCancelled, ""), "output", h.output)
	case err != nil:
		h.discard()
		h.err = err
	default:
		diags := out.diagnostics(h.lines)
		if out.exitCode != 0 || diags.HasErrors() {
			h.discard()
			h.result = &domain.CompileResult{Diagnostics: diags}
			return
		}
		if _, statErr := os.Stat(h.output); statErr != nil {
			h.discard()
			h.err = zerr.With(unavailable(zerr.Wrap(statErr, "compiler produced no output")), "output", h.output)
			return
		}
		h.artifact.Diagnostics = diags
		h.result = &domain.CompileResult{Success: true, Diagnostics: diags, Artifact: h.artifact}
	}
}

func (h *handle) discard() {
	_ = os.Remove(h.output)
	if h.ownStage {
		_ = os.RemoveAll(h.stage)
	}
}
