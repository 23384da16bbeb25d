// Package pkgroot resolves package specs against a local package root laid out as
// <root>/<name>/<version>/.
package pkgroot

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

var _ ports.PackageResolver = (*Resolver)(nil)

// Resolver implements ports.PackageResolver over a directory tree.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at root.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve returns the version directory for spec. A bare name selects the highest
// release version, falling back to the highest pre-release.
func (r *Resolver) Resolve(ctx context.Context, spec string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, version, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}

	pkgDir := filepath.Join(r.root, filepath.FromSlash(name))
	versions, err := r.versions(pkgDir)
	if err != nil {
		return nil, zerr.With(zerr.With(domain.WrapKind(err, domain.ErrPackageResolution), "package", name), "root", r.root)
	}
	if len(versions) == 0 {
		return nil, zerr.With(zerr.With(domain.Detail(domain.ErrPackageResolution, "no versions installed"), "package", name), "root", r.root)
	}

	if version == "" {
		return []string{filepath.Join(pkgDir, pick(versions))}, nil
	}

	for _, dir := range versions {
		if semver.Compare(canonical(dir), version) == 0 {
			return []string{filepath.Join(pkgDir, dir)}, nil
		}
	}

	return nil, zerr.With(zerr.With(domain.Detail(domain.ErrPackageResolution, "version not installed"), "package", name), "version", version)
}

// ParseSpec splits name[@version] and validates both parts. The returned version is
// canonical semver with a leading "v", or empty.
func ParseSpec(spec string) (string, string, error) {
	name, version, hasVersion := strings.Cut(strings.TrimSpace(spec), "@")
	if err := module.CheckImportPath(name); err != nil {
		return "", "", zerr.With(domain.WrapKind(err, domain.ErrInvalidPackageSpec), "spec", spec)
	}
	if !hasVersion {
		return name, "", nil
	}

	v := canonical(version)
	if !semver.IsValid(v) {
		return "", "", zerr.With(domain.Detail(domain.ErrInvalidPackageSpec, "invalid version "+version), "spec", spec)
	}
	return name, v, nil
}

// versions lists the subdirectories of pkgDir whose names are semantic versions.
func (r *Resolver) versions(pkgDir string) ([]string, error) {
	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() && semver.IsValid(canonical(e.Name())) {
			out = append(out, e.Name())
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return semver.Compare(canonical(a), canonical(b))
	})
	return out, nil
}

// pick returns the highest release in sorted, or the highest entry if all are pre-releases.
func pick(sorted []string) string {
	for i := len(sorted) - 1; i >= 0; i-- {
		if semver.Prerelease(canonical(sorted[i])) == "" {
			return sorted[i]
		}
	}
	return sorted[len(sorted)-1]
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
