package yaegi

import (
	"os"
	"path/filepath"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// importRoots maps the import path of every referenced source package to its directory.
// A go.mod module path takes precedence over the reference identity. References that are
// not directories or have no valid import path are skipped.
func (b *Backend) importRoots(refs []domain.Reference) (map[string]string, error) {
	var roots map[string]string
	for _, ref := range refs {
		if !ref.IsFile() {
			continue
		}
		info, err := os.Stat(ref.Path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat reference"), "path", ref.Path)
		}
		if !info.IsDir() {
			continue
		}

		path := ref.Identity
		if data, err := os.ReadFile(filepath.Join(ref.Path, "go.mod")); err == nil {
			if mp := modfile.ModulePath(data); mp != "" {
				path = mp
			}
		}
		if err := module.CheckImportPath(path); err != nil {
			if b.logger != nil {
				b.logger.Warn("reference " + ref.Identity + " is not importable: " + err.Error())
			}
			continue
		}

		if roots == nil {
			roots = make(map[string]string)
		}
		roots[path] = ref.Path
	}
	return roots, nil
}

// linkGoPath builds a GOPATH whose src tree links each import path to its directory.
// The returned cleanup removes the tree, never the linked directories.
func linkGoPath(imports map[string]string) (string, func(), error) {
	if len(imports) == 0 {
		return "", func() {}, nil
	}

	root, err := os.MkdirTemp("", "gscript-gopath-")
	if err != nil {
		return "", nil, zerr.Wrap(err, "failed to create package tree")
	}
	cleanup := func() { _ = os.RemoveAll(root) }

	for path, dir := range imports {
		link := filepath.Join(root, "src", filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(link), domain.DirPerm); err != nil {
			cleanup()
			return "", nil, zerr.Wrap(err, "failed to create package tree")
		}
		if err := os.Symlink(dir, link); err != nil {
			cleanup()
			return "", nil, zerr.With(zerr.Wrap(err, "failed to link package"), "import", path)
		}
	}
	return root, cleanup, nil
}
