package yaegi_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/adapters/yaegi"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/core/ports/mocks"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.uber.org/mock/gomock"
)

const greeter = `package main

import "fmt"

func Greet(name string) string { return "hello " + name }

func Main() string { return "none" }

func Main__name(name string) string { return "one " + name }

func main() {
	fmt.Println(Greet("world"))
}
`

func request(text string) *domain.CompileRequest {
	return &domain.CompileRequest{
		Units:  []*domain.SourceUnit{{Path: "/src/main.cs", Text: text}},
		Target: domain.TargetMemoryLibrary,
	}
}

func newBackend(t *testing.T) *yaegi.Backend {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return yaegi.New(log)
}

func member(t *testing.T, td *domain.TypeDescriptor, name string) domain.MemberDescriptor {
	t.Helper()
	overloads := td.Overloads(name)
	require.Len(t, overloads, 1, name)
	return overloads[0]
}

func TestBackend_CompileAndLoad(t *testing.T) {
	t.Parallel()
	b := newBackend(t)

	res, err := b.Compile(context.Background(), request(greeter), ports.CompileOptions{})
	require.NoError(t, err)
	require.True(t, res.Success, res.Diagnostics.String())

	art := res.Artifact
	assert.True(t, art.InMemory())
	assert.Equal(t, domain.DefaultRootTypeName, art.Module)
	assert.Equal(t, compiler.EntryAlias, art.Entry)
	assert.NotContains(t, string(art.Blob), "func main()")

	var stdout bytes.Buffer
	mod, err := b.Load(context.Background(), art, ports.LoadOptions{Stdout: &stdout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mod.Close() })

	assert.Equal(t, "script", mod.Name())
	assert.Equal(t, compiler.EntryAlias, mod.Entry())
	require.NotEmpty(t, mod.Types())

	root := mod.Types()[0]
	assert.Equal(t, "script", root.Name)
	assert.Nil(t, root.Type)
	assert.Equal(t, []string{"Greet", "Main"}, root.PublicMemberNames())
	assert.Len(t, root.Overloads("Main"), 2)

	greet := member(t, root, "Greet")
	assert.True(t, greet.Static)
	out := greet.Func.Call([]reflect.Value{reflect.ValueOf("gscript")})
	require.Len(t, out, 1)
	assert.Equal(t, "hello gscript", out[0].Interface())

	entry := member(t, root, compiler.EntryAlias)
	assert.False(t, entry.Public)
	entry.Func.Call(nil)
	assert.Equal(t, "hello world\n", stdout.String())
}

func TestBackend_CompileErrors(t *testing.T) {
	t.Parallel()
	b := newBackend(t)

	res, err := b.Compile(context.Background(), request("package main\n\nfunc main() {\n\tfmtx.Println()\n}\n"), ports.CompileOptions{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Artifact)
	require.True(t, res.Diagnostics.HasErrors())
	assert.Contains(t, res.Diagnostics.String(), "fmtx")
	assert.True(t, errors.Is(res.Err(), domain.ErrCompile))
}

func TestBackend_ImportedUnitErrorsPointAtSource(t *testing.T) {
	t.Parallel()
	req := &domain.CompileRequest{
		Units: []*domain.SourceUnit{
			{Path: "/src/main.cs", Text: "package main\n\nfunc main() {\n\tprintln(Broken())\n}\n"},
			{Path: "/src/lib.cs", Text: "package lib\n\nfunc Broken() int {\n\treturn undefinedValue\n}\n"},
		},
		Edges:  []domain.ImportEdge{{From: "/src/main.cs", To: "/src/lib.cs"}},
		Target: domain.TargetMemoryLibrary,
	}

	res, err := newBackend(t).Compile(context.Background(), req, ports.CompileOptions{})
	require.NoError(t, err)
	assert.False(t, res.Success)

	errs := res.Diagnostics.Errors()
	require.NotEmpty(t, errs)
	assert.Equal(t, "/src/lib.cs", errs[0].File)
	assert.Equal(t, 4, errs[0].Line)
	assert.Positive(t, errs[0].Column)
	assert.Contains(t, errs[0].Message, "undefinedValue")
}

func TestBackend_SyntaxErrorsPointAtSource(t *testing.T) {
	t.Parallel()
	b := newBackend(t)

	diags, err := b.Check(context.Background(), request("package main\n\nfunc main() {\n\tx := \n}\n"))
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, "/src/main.cs", diags[0].File)
	assert.Equal(t, 5, diags[0].Line)
}

func TestBackend_CheckClean(t *testing.T) {
	t.Parallel()
	diags, err := newBackend(t).Check(context.Background(), request(greeter))
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestBackend_RejectsDiskTargets(t *testing.T) {
	t.Parallel()
	req := request(greeter)
	req.Target = domain.TargetDiskExecutable

	_, err := newBackend(t).Compile(context.Background(), req, ports.CompileOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedBackend))
}

func TestBackend_LoadRequiresBlob(t *testing.T) {
	t.Parallel()
	_, err := newBackend(t).Load(context.Background(), &domain.Artifact{Path: "/tmp/x"}, ports.LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotLoadable))
}

func TestBackend_Capabilities(t *testing.T) {
	t.Parallel()
	b := newBackend(t)
	assert.Equal(t, yaegi.Name, b.Name())
	caps := b.Capabilities()
	assert.True(t, caps.InProcess)
	assert.True(t, caps.Supports(domain.TargetMemoryLibrary))
	assert.False(t, caps.Supports(domain.TargetDiskLibrary))
}
