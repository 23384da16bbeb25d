package domain

import (
	"fmt"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// Diagnostic is a compiler message in the shape shared by every backend.
type Diagnostic struct {
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Column    int    `json:"column,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	IsWarning bool   `json:"is_warning,omitempty"`
}

// String formats the diagnostic as file(line,col): severity CODE: message.
func (d Diagnostic) String() string {
	severity := "error"
	if d.IsWarning {
		severity = "warning"
	}

	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		if d.Line > 0 {
			_, _ = fmt.Fprintf(&b, "(%d,%d)", d.Line, d.Column)
		}
		b.WriteString(": ")
	}
	b.WriteString(severity)
	if d.Code != "" {
		b.WriteString(" " + d.Code)
	}
	b.WriteString(": " + d.Message)
	return b.String()
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic is an error.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if !d.IsWarning {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics only.
func (ds Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if !d.IsWarning {
			out = append(out, d)
		}
	}
	return out
}

// String joins the diagnostics one per line.
func (ds Diagnostics) String() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Artifact is the output of a successful compilation.
type Artifact struct {
	Fingerprint Fingerprint `json:"fingerprint"`
	Backend     string      `json:"backend"`
	Target      TargetKind  `json:"target"`
	// Path is the artifact file for on-disk targets.
	Path string `json:"path,omitempty"`
	// Blob is the artifact content for in-memory targets.
	Blob []byte `json:"blob,omitempty"`
	// DebugInfo maps lines of the compiled unit back to source files.
	DebugInfo   *LineMap    `json:"debug_info,omitempty"`
	Diagnostics Diagnostics `json:"diagnostics,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	// Module is the root type name the compiled script is exposed under.
	Module string `json:"module,omitempty"`
	// Entry is the script's entry point name inside the module, if any.
	Entry string `json:"entry,omitempty"`
	// Imports maps import paths to the package directories the script was compiled against.
	Imports map[string]string `json:"imports,omitempty"`
	// Exports lists the exported functions of an on-disk library.
	Exports []string `json:"exports,omitempty"`
	// Args are the default runtime arguments collected from directives.
	Args []string `json:"args,omitempty"`
}

// InMemory reports whether the artifact content is held in Blob.
func (a *Artifact) InMemory() bool {
	return a.Path == "" && len(a.Blob) > 0
}

// CompileResult is returned by every backend compile.
// Ordinary compile errors are reported here with Success=false, never as a Go error.
type CompileResult struct {
	Success     bool
	Diagnostics Diagnostics
	Artifact    *Artifact
	// Cached reports whether the artifact came from the cache.
	Cached bool
}

// Err returns ErrCompile with the error diagnostics attached, or nil on success.
func (r *CompileResult) Err() error {
	if r == nil || r.Success {
		return nil
	}
	return zerr.With(zerr.Wrap(ErrCompile, ""), "diagnostics", r.Diagnostics.Errors().String())
}
