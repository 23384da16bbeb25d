package compiler_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/engine/compiler"
)

const (
	entrySource = `//gs_inc lib.cs, rename(Helper, LibHelper);
package main

import (
	"fmt"
	"strings"
)

func main() {
	fmt.Println(strings.ToUpper(LibHelper()))
}
`
	libSource = `package lib

import "strings"

func Helper() string {
	return strings.Repeat("x", 2)
}

func main() {}
`
)

func twoUnitRequest() *domain.CompileRequest {
	return &domain.CompileRequest{
		Units: []*domain.SourceUnit{
			{Path: "/src/main.cs", Text: entrySource},
			{Path: "/src/lib.cs", Text: libSource},
		},
		Edges: []domain.ImportEdge{{
			From:      "/src/main.cs",
			To:        "/src/lib.cs",
			RenameMap: map[string]string{"Helper": "LibHelper"},
		}},
	}
}

func TestConcatenate_Golden(t *testing.T) {
	t.Parallel()

	unit, diags := compiler.Concatenate(twoUnitRequest(), compiler.UnitOptions{
		Package:    "script",
		FileName:   "gscript_script.go",
		AliasEntry: true,
	})
	require.Empty(t, diags)
	assert.Equal(t, compiler.EntryAlias, unit.Entry)

	g := goldie.New(t)
	g.Assert(t, "concatenated", unit.Source)
}

func TestConcatenate_LineMap(t *testing.T) {
	t.Parallel()

	unit, diags := compiler.Concatenate(twoUnitRequest(), compiler.UnitOptions{Package: "script", FileName: "gscript_script.go"})
	require.Empty(t, diags)
	assert.Equal(t, "main", unit.Entry)

	require.Len(t, unit.Lines.Segments, 2)
	assert.Equal(t, domain.LineSegment{Start: 12, Count: 5, File: "/src/main.cs", FileLine: 7}, unit.Lines.Segments[0])
	assert.Equal(t, domain.LineSegment{Start: 18, Count: 7, File: "/src/lib.cs", FileLine: 3}, unit.Lines.Segments[1])

	file, line, ok := unit.Lines.Resolve(15)
	require.True(t, ok)
	assert.Equal(t, "/src/main.cs", file)
	assert.Equal(t, 10, line)

	file, line, ok = unit.Lines.Resolve(24)
	require.True(t, ok)
	assert.Equal(t, "/src/lib.cs", file)
	assert.Equal(t, 9, line)

	_, _, ok = unit.Lines.Resolve(4)
	assert.False(t, ok)
}

func TestConcatenate_PreserveMain(t *testing.T) {
	t.Parallel()

	req := twoUnitRequest()
	req.Edges[0].PreserveMain = true
	req.Edges[0].RenameMap = nil
	req.Units[0].Text = "package main\n\nfunc main() {}\n"

	unit, diags := compiler.Concatenate(req, compiler.UnitOptions{Package: "script", FileName: "u.go"})
	require.Empty(t, diags)
	assert.Contains(t, string(unit.Source), "func Helper() string")
	assert.NotContains(t, string(unit.Source), "main_1")
}

func TestConcatenate_SkipsMissingAndMergesImports(t *testing.T) {
	t.Parallel()

	req := &domain.CompileRequest{
		Units: []*domain.SourceUnit{
			{Path: "/src/a.cs", Text: "package a\n\nimport \"os\"\n\nvar A = os.Args\n"},
			{Path: "/src/gone.cs", Missing: true},
			{Path: "/src/b.cs", Text: "package b\n\nimport (\n\t\"os\"\n\tstr \"strings\"\n)\n\nvar B = str.ToLower(os.Args[0])\n"},
		},
	}

	unit, diags := compiler.Concatenate(req, compiler.UnitOptions{Package: "script", FileName: "u.go", AliasEntry: true})
	require.Empty(t, diags)
	assert.Empty(t, unit.Entry)
	assert.Contains(t, string(unit.Source), "import (\n\t\"os\"\n\tstr \"strings\"\n)\n")
	assert.NotContains(t, string(unit.Source), "gone.cs")
}

func TestConcatenate_SyntaxErrorsPointAtSource(t *testing.T) {
	t.Parallel()

	req := &domain.CompileRequest{
		Units: []*domain.SourceUnit{
			{Path: "/src/broken.cs", Text: "package main\n\nfunc main() {\n\tx := \n}\n"},
		},
	}

	unit, diags := compiler.Concatenate(req, compiler.UnitOptions{Package: "script", FileName: "u.go"})
	assert.Nil(t, unit)
	require.NotEmpty(t, diags)
	assert.Equal(t, "/src/broken.cs", diags[0].File)
	assert.Equal(t, 5, diags[0].Line)
	assert.True(t, diags.HasErrors())
}

func TestDeclarations(t *testing.T) {
	t.Parallel()

	src := []byte(`package script

type Greeter struct{ Name string }

type hidden struct{}

type Box[T any] struct{ v T }

func (g *Greeter) Hello() string { return "hi " + g.Name }

func (g Greeter) Shout() string { return g.Name }

func (h hidden) Nope() {}

func Main() {}

func Main__args(args []string) {}

func Map[T any](v T) T { return v }

func helper() {}
`)

	d, err := compiler.Declarations(src)
	require.NoError(t, err)
	assert.Equal(t, "script", d.Package)
	assert.Equal(t, []string{"Main", "Main__args"}, d.Funcs)
	assert.Equal(t, []string{"Greeter"}, d.Types)
	assert.Equal(t, []compiler.Method{{Name: "Hello", Pointer: true}, {Name: "Shout"}}, d.Methods["Greeter"])
	assert.NotContains(t, d.Methods, "hidden")

	assert.Equal(t, "Main", compiler.MemberName("Main__args"))
	assert.Equal(t, "Main", compiler.MemberName("Main"))
	assert.Equal(t, "__x", compiler.MemberName("__x"))
}

func TestConcatenate_RenameEntry(t *testing.T) {
	t.Parallel()

	unit, diags := compiler.Concatenate(twoUnitRequest(), compiler.UnitOptions{
		Package:     "main",
		FileName:    "u.go",
		RenameEntry: true,
	})
	require.Empty(t, diags)
	assert.Equal(t, compiler.EntryAlias, unit.Entry)

	src := string(unit.Source)
	assert.Contains(t, src, "func ScriptMain() {\n")
	assert.Contains(t, src, "func main_1() {}")
	assert.NotContains(t, src, "func main()")
}
