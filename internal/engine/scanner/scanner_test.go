package scanner_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/engine/scanner"
)

func keywords(ds []domain.Directive) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Keyword + " " + d.Argument
	}
	return out
}

func TestScan_LineInitialOnly(t *testing.T) {
	src := `package main

//gs_ref fmt;
  //GS_INC util.cs;
import "fmt"

var url = "http://example.com"; //gs_ref not_a_directive;

func main() { fmt.Println(url) }
`
	ds, err := scanner.Scan(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"ref fmt", "inc util.cs"}, keywords(ds))
	assert.Equal(t, 3, ds[0].Line)
	assert.Equal(t, 4, ds[1].Line)
	assert.Equal(t, "//GS_INC", src[ds[1].Offset:ds[1].Offset+8])
}

func TestScan_IgnoresStringsAndComments(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "block comment",
			src:  "/*\n//gs_ref hidden;\n*/\n//gs_ref shown;\n",
			want: []string{"ref shown"},
		},
		{
			name: "raw string",
			src:  "var s = `\n//gs_inc hidden.cs;\n`\n//gs_inc shown.cs;\n",
			want: []string{"inc shown.cs"},
		},
		{
			name: "verbatim string",
			src:  "var s = @\"a\"\"\n//gs_inc hidden.cs;\n\";\n//gs_inc shown.cs;\n",
			want: []string{"inc shown.cs"},
		},
		{
			name: "block comment closed on same line",
			src:  "/* x */ var a = 1\n//gs_dir lib;\n",
			want: []string{"dir lib"},
		},
		{
			name: "comment opener inside string",
			src:  "var s = \"/*\"\n//gs_dir lib;\n",
			want: []string{"dir lib"},
		},
		{
			name: "line comment hides block opener",
			src:  "// /* not a block\n//gs_dir lib;\n",
			want: []string{"dir lib"},
		},
		{
			name: "rune literal quote",
			src:  "var q = '\"'\n//gs_dir lib;\n",
			want: []string{"dir lib"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := scanner.Scan(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keywords(ds))
		})
	}
}

func TestScan_Arguments(t *testing.T) {
	ds, err := scanner.Scan("//gs_inc \"my; file.cs\", preserve_main; trailing\n//gs_engine go\n//gs_import other.cs;\n//gs_unknown x;\n")
	require.NoError(t, err)
	require.Len(t, ds, 4)

	assert.Equal(t, domain.KeywordInc, ds[0].Keyword)
	assert.Equal(t, `"my; file.cs", preserve_main`, ds[0].Argument)
	assert.Equal(t, domain.KeywordEngine, ds[1].Keyword)
	assert.Equal(t, "go", ds[1].Argument)
	assert.Equal(t, domain.KeywordInc, ds[2].Keyword)
	assert.Equal(t, "unknown", ds[3].Keyword)
}

func TestScan_UnterminatedQuote(t *testing.T) {
	_, err := scanner.Scan("package main\n//gs_inc \"broken.cs;\n")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDirectiveSyntax))
}

func TestScan_OrdinarySourceNeverFails(t *testing.T) {
	src := "package main\nvar s = \"unterminated\nvar r = 'x\n/* open comment\n"
	ds, err := scanner.Scan(src)
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestScan_StripsBOM(t *testing.T) {
	ds, err := scanner.Scan("\ufeff//gs_ref fmt;\n")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, 0, ds[0].Offset)
}

func TestScan_CustomPrefix(t *testing.T) {
	ds, err := scanner.New("//css_").Scan("//css_ref System.Data;\n//gs_ref fmt;\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"ref System.Data"}, keywords(ds))
}
