package scanner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/engine/scanner"
)

func TestParse(t *testing.T) {
	src := `//gs_ref strings, "lib dir";
//gs_inc helpers.cs, preserve_main, rename(Old, New);
//gs_inc a/**/*.cs;
//gs_nuget yaml@v1.2.0, toml;
//gs_dir ../shared;
//gs_args -v "two words";
//gs_co -tags=dev;
//gs_res data.json;
//gs_engine Yaegi;
//gs_engine go;
package main
`
	set, err := scanner.Parse(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"strings", "lib dir"}, set.References)
	require.Len(t, set.Imports, 2)
	assert.Equal(t, domain.ImportSpec{
		Pattern:      "helpers.cs",
		PreserveMain: true,
		RenameMap:    map[string]string{"Old": "New"},
		Line:         2,
	}, set.Imports[0])
	assert.Equal(t, "a/**/*.cs", set.Imports[1].Pattern)
	assert.Equal(t, []string{"yaml@v1.2.0", "toml"}, set.Packages)
	assert.Equal(t, []string{"../shared"}, set.SearchDirs)
	assert.Equal(t, []string{"-v", "two words"}, set.Args)
	assert.Equal(t, []string{"-tags=dev"}, set.CompilerOptions)
	assert.Equal(t, []string{"data.json"}, set.Resources)
	assert.Equal(t, "yaegi", set.Engine)
}

func TestParse_BadImportOption(t *testing.T) {
	_, err := scanner.Parse("//gs_inc a.cs, keep_everything;\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectiveSyntax))

	_, err = scanner.Parse("//gs_inc a.cs, rename(OnlyOne);\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectiveSyntax))
}

func TestParse_BadArgs(t *testing.T) {
	_, err := scanner.Parse("//gs_args 'unterminated\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectiveSyntax))
}
