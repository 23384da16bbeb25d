// Package scanner extracts build directives from script source text.
package scanner

import (
	"strconv"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

// keywordAliases maps every accepted spelling to its canonical keyword.
var keywordAliases = map[string]string{
	"ref":       domain.KeywordRef,
	"reference": domain.KeywordRef,
	"inc":       domain.KeywordInc,
	"include":   domain.KeywordInc,
	"import":    domain.KeywordInc,
	"nuget":     domain.KeywordNuget,
	"pkg":       domain.KeywordNuget,
	"package":   domain.KeywordNuget,
	"dir":       domain.KeywordDir,
	"args":      domain.KeywordArgs,
	"co":        domain.KeywordCo,
	"res":       domain.KeywordRes,
	"engine":    domain.KeywordEngine,
	"backend":   domain.KeywordEngine,
}

// state is the lexical region the scanner is in at a given byte.
type state int

const (
	stateCode state = iota
	stateString
	stateRune
	stateRawString
	stateVerbatimString
	stateBlockComment
)

// Scanner extracts line-initial directives from source text.
type Scanner struct {
	prefix string
}

// New creates a Scanner for the given directive prefix.
// An empty prefix selects domain.DirectivePrefix.
func New(prefix string) *Scanner {
	if prefix == "" {
		prefix = domain.DirectivePrefix
	}
	return &Scanner{prefix: strings.ToLower(prefix)}
}

// Scan returns the directives of text in source order.
func Scan(text string) ([]domain.Directive, error) {
	return New("").Scan(text)
}

// Scan walks text once. A line is a directive only when it starts, after leading whitespace,
// with the prefix while the scanner is in plain code, so directive-like text inside
// multi-line strings and block comments is never picked up.
func (s *Scanner) Scan(text string) ([]domain.Directive, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	var directives []domain.Directive
	st := stateCode
	offset := 0
	lineNo := 0

	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += offset
		}
		line := text[offset:end]
		lineNo++

		if st == stateCode {
			trimmed := strings.TrimLeft(line, " \t\r")
			if hasPrefixFold(trimmed, s.prefix) {
				start := offset + len(line) - len(trimmed)
				d, err := s.parseLine(trimmed[len(s.prefix):], start, lineNo)
				if err != nil {
					return nil, err
				}
				directives = append(directives, d)
				offset = end + 1
				continue
			}
		}

		st = advance(line, st)
		offset = end + 1
	}

	return directives, nil
}

// advance moves the lexical state across one line and returns the state at its end.
// Interpreted strings and rune literals cannot span lines and are closed at the line end.
func advance(line string, st state) state {
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch st {
		case stateBlockComment:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				st = stateCode
				i++
			}
		case stateRawString:
			if c == '`' {
				st = stateCode
			}
		case stateVerbatimString:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					i++
					continue
				}
				st = stateCode
			}
		case stateString, stateRune:
			quote := byte('"')
			if st == stateRune {
				quote = '\''
			}
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				st = stateCode
			}
		case stateCode:
			switch {
			case c == '/' && i+1 < len(line) && line[i+1] == '/':
				return stateCode
			case c == '/' && i+1 < len(line) && line[i+1] == '*':
				st = stateBlockComment
				i++
			case c == '@' && i+1 < len(line) && line[i+1] == '"':
				st = stateVerbatimString
				i++
			case c == '"':
				st = stateString
			case c == '\'':
				st = stateRune
			case c == '`':
				st = stateRawString
			}
		}
	}

	if st == stateString || st == stateRune {
		return stateCode
	}
	return st
}

// parseLine splits "keyword argument;" into a directive.
func (s *Scanner) parseLine(rest string, offset, line int) (domain.Directive, error) {
	i := 0
	for i < len(rest) && isKeywordByte(rest[i]) {
		i++
	}
	raw := rest[:i]
	keyword := strings.ToLower(raw)
	if canonical, ok := keywordAliases[keyword]; ok {
		keyword = canonical
	}

	arg, err := argument(rest[i:])
	if err != nil {
		return domain.Directive{}, zerr.With(zerr.With(err, "line", line), "directive", strings.TrimSpace(rest))
	}

	return domain.Directive{
		Keyword:  keyword,
		Argument: arg,
		Offset:   offset,
		Line:     line,
	}, nil
}

// argument returns the text up to the first unquoted ';'. Quotes are kept.
func argument(s string) (string, error) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if inQuote {
				i++
			}
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return strings.TrimSpace(s[:i]), nil
			}
		}
	}
	if inQuote {
		return "", domain.Detail(domain.ErrDirectiveSyntax, "unterminated quote")
	}
	return strings.TrimSpace(strings.TrimRight(s, "\r")), nil
}

func isKeywordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// unquote strips one level of double quotes, honouring Go escape sequences.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return s[1 : len(s)-1]
	}
	return s
}
