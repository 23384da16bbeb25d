package compiler

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
)

var (
	// file(line,col): error CODE: message
	bracketed = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): (error|warning) ([A-Za-z]*\d*): (.*)$`)
	// file:line:col: message, with the column optional
	colonSeparated = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)? (.*)$`)
)

const warningPrefix = "warning: "

// ParseDiagnostics turns compiler output into diagnostics. Indented lines continue the
// previous diagnostic. Lines in no known format are collected into one opaque diagnostic.
// Diagnostics pointing into the concatenated unit of lines are mapped back to their source.
func ParseDiagnostics(output string, lines *domain.LineMap) domain.Diagnostics {
	var (
		out    domain.Diagnostics
		opaque []string
	)

	for raw := range strings.Lines(output) {
		raw = strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(raw, "# ") {
			continue
		}
		if (raw[0] == '\t' || raw[0] == ' ') && len(out) > 0 {
			out[len(out)-1].Message += "\n" + strings.TrimSpace(raw)
			continue
		}
		if d, ok := parseLine(raw); ok {
			out = append(out, d)
			continue
		}
		opaque = append(opaque, strings.TrimSpace(raw))
	}

	if len(opaque) > 0 {
		out = append(out, domain.Diagnostic{Message: strings.Join(opaque, "\n")})
	}
	return Remap(out, lines)
}

// Remap points diagnostics that reference the concatenated unit at the original files.
// The unit is matched by base name since compilers often print it relative.
func Remap(ds domain.Diagnostics, lines *domain.LineMap) domain.Diagnostics {
	if lines == nil || lines.Unit == "" {
		return ds
	}
	base := filepath.Base(lines.Unit)
	for i := range ds {
		if ds[i].File != "" && filepath.Base(ds[i].File) == base {
			ds[i].File = lines.Unit
		}
	}
	return lines.Remap(ds)
}

func parseLine(line string) (domain.Diagnostic, bool) {
	if m := bracketed.FindStringSubmatch(line); m != nil {
		return domain.Diagnostic{
			File:      m[1],
			Line:      atoi(m[2]),
			Column:    atoi(m[3]),
			IsWarning: m[4] == "warning",
			Code:      m[5],
			Message:   m[6],
		}, true
	}
	if m := colonSeparated.FindStringSubmatch(line); m != nil && !strings.ContainsAny(m[1], " \t") {
		d := domain.Diagnostic{
			File:    m[1],
			Line:    atoi(m[2]),
			Column:  atoi(m[3]),
			Message: m[4],
		}
		if rest, ok := strings.CutPrefix(d.Message, warningPrefix); ok {
			d.IsWarning = true
			d.Message = rest
		} else if rest, ok := strings.CutPrefix(d.Message, "error: "); ok {
			d.Message = rest
		}
		return d, true
	}
	return domain.Diagnostic{}, false
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
