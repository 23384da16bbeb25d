// Package output creates termenv outputs and renders diagnostics and tables for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/ui/style"
)

// ColorProfile returns the terminal color profile. NO_COLOR forces Ascii.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a new termenv.Output writing to w, or to stderr when w is nil.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}

// Diagnostics writes one line per diagnostic, errors in red and warnings in yellow.
func Diagnostics(out *termenv.Output, ds domain.Diagnostics) error {
	for _, d := range ds {
		icon, color := style.Cross, style.Red
		if d.IsWarning {
			icon, color = style.Warning, style.Yellow
		}
		line := out.String(icon + " " + d.String()).Foreground(termenv.RGBColor(string(color)))
		if _, err := out.WriteString(line.String() + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Table writes rows as left-aligned columns separated by two spaces.
// The header row is rendered with the heading style.
func Table(w io.Writer, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i == len(cells)-1 {
				parts[i] = cell
				continue
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return strings.Join(parts, "  ")
	}

	if _, err := fmt.Fprintln(w, style.Heading.Render(format(header))); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, format(row)); err != nil {
			return err
		}
	}
	return nil
}
