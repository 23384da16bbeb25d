package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/core/domain"
)

func TestLineMap_Resolve(t *testing.T) {
	m := &domain.LineMap{Unit: "unit.go"}
	m.Add(3, 4, "/src/a.cs", 2)
	m.Add(8, 2, "/src/b.cs", 5)

	tests := []struct {
		line     int
		wantFile string
		wantLine int
		wantOK   bool
	}{
		{line: 1, wantOK: false},
		{line: 3, wantFile: "/src/a.cs", wantLine: 2, wantOK: true},
		{line: 6, wantFile: "/src/a.cs", wantLine: 5, wantOK: true},
		{line: 7, wantOK: false},
		{line: 8, wantFile: "/src/b.cs", wantLine: 5, wantOK: true},
		{line: 9, wantFile: "/src/b.cs", wantLine: 6, wantOK: true},
		{line: 10, wantOK: false},
	}

	for _, tt := range tests {
		file, line, ok := m.Resolve(tt.line)
		assert.Equal(t, tt.wantOK, ok, "line %d", tt.line)
		assert.Equal(t, tt.wantFile, file, "line %d", tt.line)
		assert.Equal(t, tt.wantLine, line, "line %d", tt.line)
	}
}

func TestLineMap_Remap(t *testing.T) {
	m := &domain.LineMap{Unit: "unit.go"}
	m.Add(2, 10, "/src/a.cs", 1)

	in := domain.Diagnostics{
		{File: "unit.go", Line: 5, Column: 3, Message: "undefined: x"},
		{File: "/other.cs", Line: 5, Message: "kept"},
		{Message: "opaque"},
	}
	out := m.Remap(in)

	require.Len(t, out, 3)
	assert.Equal(t, "/src/a.cs", out[0].File)
	assert.Equal(t, 4, out[0].Line)
	assert.Equal(t, 3, out[0].Column)
	assert.Equal(t, in[1], out[1])
	assert.Equal(t, in[2], out[2])
	assert.Equal(t, "unit.go", in[0].File, "input must not be modified")
}

func TestDiagnostic_String(t *testing.T) {
	d := domain.Diagnostic{File: "a.cs", Line: 3, Column: 7, Code: "CS1002", Message: "; expected"}
	assert.Equal(t, "a.cs(3,7): error CS1002: ; expected", d.String())

	w := domain.Diagnostic{Message: "something odd", IsWarning: true}
	assert.Equal(t, "warning: something odd", w.String())
}

func TestCompileResult_Err(t *testing.T) {
	ok := &domain.CompileResult{Success: true}
	require.NoError(t, ok.Err())

	failed := &domain.CompileResult{Diagnostics: domain.Diagnostics{{Message: "boom"}}}
	err := failed.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompile))
}

func TestCompileRequest_NewestInput(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &domain.CompileRequest{
		Units: []*domain.SourceUnit{
			{Path: "/a", ModTime: base},
			{Path: "/b", ModTime: base.Add(time.Hour)},
		},
		References: []domain.Reference{
			{Identity: "lib", Path: "/lib", ModTime: base.Add(2 * time.Hour)},
			{Identity: "fmt"},
		},
		Edges: []domain.ImportEdge{{From: "/a", To: "/b", PreserveMain: true}},
	}

	assert.Equal(t, base.Add(2*time.Hour), req.NewestInput())
	assert.Equal(t, "/a", req.Entry().Path)
	assert.Equal(t, []string{"/a", "/b"}, req.Paths())
	assert.True(t, req.PreserveMain("/b"))
	assert.False(t, req.PreserveMain("/a"))
}

func TestScriptRuntimeError_Unwrap(t *testing.T) {
	inner := errors.New("user failure")
	err := error(&domain.ScriptRuntimeError{Member: "script.Main", Value: inner, Origin: "a.cs:4"})

	assert.True(t, errors.Is(err, domain.ErrScriptRuntime))
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "a.cs:4")

	var sre *domain.ScriptRuntimeError
	require.True(t, errors.As(err, &sre))
	assert.Equal(t, "script.Main", sre.Member)
}

func TestTargetKind(t *testing.T) {
	assert.True(t, domain.TargetDiskExecutable.IsValid())
	assert.True(t, domain.TargetDiskExecutable.OnDisk())
	assert.False(t, domain.TargetMemoryLibrary.OnDisk())
	assert.False(t, domain.TargetKind("dll").IsValid())
}

func TestWrapKind(t *testing.T) {
	cause := errors.New("exec: \"csc\": executable file not found")
	err := domain.WrapKind(cause, domain.ErrBackendUnavailable)

	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "backend unavailable: exec: \"csc\": executable file not found", err.Error())
	assert.NoError(t, domain.WrapKind(nil, domain.ErrBackendUnavailable))
}

func TestDetail(t *testing.T) {
	err := domain.Detail(domain.ErrScriptNotFound, "hello.cs")

	assert.True(t, errors.Is(err, domain.ErrScriptNotFound))
	assert.Equal(t, "hello.cs: script not found", err.Error())
}
