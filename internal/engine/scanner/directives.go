package scanner

import (
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/shell"
)

// Parse scans text and folds its directives into a DirectiveSet.
func Parse(text string) (domain.DirectiveSet, error) {
	directives, err := Scan(text)
	if err != nil {
		return domain.DirectiveSet{}, err
	}
	return Fold(directives)
}

// Fold applies directives in order. Unknown keywords are ignored.
// When several engine directives are present the first one wins.
func Fold(directives []domain.Directive) (domain.DirectiveSet, error) {
	var set domain.DirectiveSet

	for _, d := range directives {
		switch d.Keyword {
		case domain.KeywordRef:
			set.References = append(set.References, splitList(d.Argument)...)
		case domain.KeywordInc:
			spec, err := parseImport(d)
			if err != nil {
				return domain.DirectiveSet{}, err
			}
			if spec.Pattern != "" {
				set.Imports = append(set.Imports, spec)
			}
		case domain.KeywordNuget:
			set.Packages = append(set.Packages, splitList(d.Argument)...)
		case domain.KeywordDir:
			set.SearchDirs = append(set.SearchDirs, splitList(d.Argument)...)
		case domain.KeywordArgs:
			fields, err := fields(d)
			if err != nil {
				return domain.DirectiveSet{}, err
			}
			set.Args = append(set.Args, fields...)
		case domain.KeywordCo:
			fields, err := fields(d)
			if err != nil {
				return domain.DirectiveSet{}, err
			}
			set.CompilerOptions = append(set.CompilerOptions, fields...)
		case domain.KeywordRes:
			set.Resources = append(set.Resources, splitList(d.Argument)...)
		case domain.KeywordEngine:
			if set.Engine == "" {
				set.Engine = strings.ToLower(unquote(d.Argument))
			}
		}
	}

	return set, nil
}

// parseImport reads "path[, preserve_main][, rename(Old, New)...]".
func parseImport(d domain.Directive) (domain.ImportSpec, error) {
	items := splitList(d.Argument)
	spec := domain.ImportSpec{Line: d.Line}
	if len(items) == 0 {
		return spec, nil
	}
	spec.Pattern = items[0]

	for _, item := range items[1:] {
		lower := strings.ToLower(item)
		switch {
		case lower == domain.PreserveMainFlag:
			spec.PreserveMain = true
		case strings.HasPrefix(lower, "rename(") && strings.HasSuffix(item, ")"):
			pair := strings.Split(item[len("rename("):len(item)-1], ",")
			if len(pair) != 2 || strings.TrimSpace(pair[0]) == "" || strings.TrimSpace(pair[1]) == "" {
				return spec, zerr.With(domain.Detail(domain.ErrDirectiveSyntax, "rename expects two names"), "line", d.Line)
			}
			if spec.RenameMap == nil {
				spec.RenameMap = make(map[string]string)
			}
			spec.RenameMap[strings.TrimSpace(pair[0])] = strings.TrimSpace(pair[1])
		default:
			return spec, zerr.With(domain.Detail(domain.ErrDirectiveSyntax, "unknown import option "+item), "line", d.Line)
		}
	}

	return spec, nil
}

// fields splits a shell-style argument list.
func fields(d domain.Directive) ([]string, error) {
	out, err := shell.Fields(d.Argument, nil)
	if err != nil {
		return nil, zerr.With(domain.WrapKind(err, domain.ErrDirectiveSyntax), "line", d.Line)
	}
	return out, nil
}

// splitList splits on commas outside quotes and parentheses and unquotes each item.
func splitList(s string) []string {
	var items []string
	depth := 0
	inQuote := false
	start := 0

	flush := func(end int) {
		item := strings.TrimSpace(s[start:end])
		if item != "" {
			items = append(items, unquote(item))
		}
	}

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote && depth > 0 {
				depth--
			}
		case ',':
			if !inQuote && depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))

	return items
}
