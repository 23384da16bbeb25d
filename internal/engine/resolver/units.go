package resolver

import (
	"bytes"
	"os"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/engine/scanner"
	"go.trai.ch/zerr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// load returns the parsed unit at path, reusing the cached parse while the
// file's modification time and size are unchanged.
func (r *Resolver) load(path string) (*domain.SourceUnit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, zerr.With(domain.WrapKind(err, domain.ErrScriptNotFound), "probed", path)
	}

	r.mu.Lock()
	cached, ok := r.units[path]
	r.mu.Unlock()
	if ok && cached.ModTime.Equal(info.ModTime()) && cached.Size == info.Size() {
		return cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(domain.WrapKind(err, domain.ErrFileOpenFailed), "path", path)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	text := string(data)

	directives, err := scanner.Parse(text)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}

	unit := &domain.SourceUnit{
		Path:       path,
		Text:       text,
		ModTime:    info.ModTime(),
		Size:       info.Size(),
		Directives: directives,
	}
	if r.hasher != nil {
		unit.ContentHash = r.hasher.HashContent(data)
	}

	r.mu.Lock()
	r.units[path] = unit
	r.mu.Unlock()
	return unit, nil
}
