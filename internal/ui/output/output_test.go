package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	require.NotNil(t, out)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
}

func TestDiagnostics(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)
	err := output.Diagnostics(out, domain.Diagnostics{
		{File: "main.cs", Line: 3, Column: 2, Message: "undefined: x"},
		{File: "lib.cs", Line: 1, Column: 1, Message: "unused", IsWarning: true},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"✗ main.cs(3,2): error: undefined: x\n! lib.cs(1,1): warning: unused\n",
		buf.String())
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	err := output.Table(&buf, []string{"A", "B"}, [][]string{{"long-value", "x"}, {"s", "y"}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "long-value  x\n")
	assert.Contains(t, buf.String(), "s           y\n")
}
