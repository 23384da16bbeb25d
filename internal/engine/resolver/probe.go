package resolver

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

// match is one resolved import target.
type match struct {
	Path string
	// Placeholder is set for lenient imports that matched nothing.
	Placeholder *domain.SourceUnit
}

// probeDirs returns the directories searched for imports of a unit in dir.
func (p *pass) probeDirs(dir string) []string {
	dirs := appendDirs(nil, dir)
	dirs = appendDirs(dirs, p.extra...)
	dirs = appendDirs(dirs, p.r.cfg.SearchDirs...)
	return appendDirs(dirs, p.r.cfg.Path...)
}

// candidates returns the locations name is probed at, in order.
func (p *pass) candidates(dir, name string) []string {
	if filepath.IsAbs(name) {
		return []string{filepath.Clean(name)}
	}
	dirs := p.probeDirs(dir)
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Join(d, name))
	}
	return out
}

// patternDirs returns the directories a wildcard import is expanded in. An absolute
// pattern is expanded once, from its own static prefix.
func (p *pass) patternDirs(dir, pattern string) []string {
	if filepath.IsAbs(pattern) {
		return []string{""}
	}
	return p.probeDirs(dir)
}

// probeImport resolves one import directive of unit.
func (p *pass) probeImport(unit *domain.SourceUnit, imp domain.ImportSpec) ([]match, error) {
	dir := filepath.Dir(unit.Path)
	var probed []string

	if isPattern(imp.Pattern) {
		for _, d := range p.patternDirs(dir, imp.Pattern) {
			probed = append(probed, filepath.Join(d, imp.Pattern))
			paths, err := p.glob(d, imp.Pattern, unit.Path)
			if err != nil {
				return nil, zerr.With(domain.WrapKind(err, domain.ErrDirectiveSyntax),
					"pattern", imp.Pattern)
			}
			if len(paths) > 0 {
				out := make([]match, 0, len(paths))
				for _, path := range paths {
					out = append(out, match{Path: path})
				}
				return out, nil
			}
		}
	} else {
		for _, candidate := range p.candidates(dir, imp.Pattern) {
			path, tried, err := p.probeFile(candidate)
			probed = append(probed, tried...)
			if err != nil {
				return nil, err
			}
			if path != "" {
				return []match{{Path: path}}, nil
			}
		}
	}

	if p.lenient() {
		placeholder := p.placeholder(dir, imp.Pattern)
		p.r.logger.Warn("import " + imp.Pattern + " not found, assuming " + placeholder.Path)
		return []match{{Path: placeholder.Path, Placeholder: placeholder}}, nil
	}

	err := domain.Detail(domain.ErrScriptNotFound, imp.Pattern)
	return nil, zerr.With(zerr.With(err, "imported_by", unit.Path), "probed", strings.Join(probed, ", "))
}

// probeFile tries candidate as given, with each extension, then as a link file.
// It returns the canonical path of the first regular file found.
func (p *pass) probeFile(candidate string) (string, []string, error) {
	tried := []string{candidate}
	if path := regularFile(candidate); path != "" {
		return path, tried, nil
	}
	for _, ext := range p.r.cfg.Extensions {
		if strings.HasSuffix(candidate, ext) {
			continue
		}
		withExt := candidate + ext
		tried = append(tried, withExt)
		if path := regularFile(withExt); path != "" {
			return path, tried, nil
		}
	}

	link := candidate + domain.LinkFileExtension
	tried = append(tried, link)
	if regularFile(link) == "" {
		return "", tried, nil
	}
	target, err := readLink(link)
	if err != nil {
		return "", tried, err
	}
	tried = append(tried, target)
	return regularFile(target), tried, nil
}

// glob expands pattern under dir to canonical regular files, skipping self.
// dir and the static prefix of pattern are taken literally, so metacharacters in
// directory names do not act as wildcards.
func (p *pass) glob(dir, pattern, self string) ([]string, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	root := filepath.Join(dir, filepath.FromSlash(base))
	matches, err := doublestar.Glob(os.DirFS(root), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		path := regularFile(filepath.Join(root, filepath.FromSlash(m)))
		if path == "" || path == self || slices.Contains(out, path) {
			continue
		}
		out = append(out, path)
	}
	slices.Sort(out)
	return out, nil
}

func (p *pass) lenient() bool {
	return p.opts.Lenient || p.r.cfg.Lenient
}

// placeholder builds a Missing unit for an import that matched nothing.
func (p *pass) placeholder(dir, name string) *domain.SourceUnit {
	ext := domain.DefaultExtension
	if len(p.r.cfg.Extensions) > 0 {
		ext = p.r.cfg.Extensions[0]
	}
	path := absFrom(dir, name)
	if filepath.Ext(path) == "" {
		path += ext
	}
	return &domain.SourceUnit{Path: path, Missing: true}
}

// readLink returns the target named by the first non-empty line of a link file.
func readLink(link string) (string, error) {
	data, err := os.ReadFile(link)
	if err != nil {
		return "", zerr.With(domain.WrapKind(err, domain.ErrInvalidLinkFile), "link", link)
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return absFrom(filepath.Dir(link), line), nil
	}
	return "", zerr.With(domain.Detail(domain.ErrInvalidLinkFile, ""), "link", link)
}

// regularFile returns the canonical path of path if it is a regular file.
func regularFile(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	canonical, err := Canonical(path)
	if err != nil {
		return ""
	}
	return canonical
}

func isPattern(name string) bool {
	return strings.ContainsAny(name, "*?[")
}
