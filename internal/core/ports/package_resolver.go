package ports

import "context"

// PackageResolver turns a package spec into the paths the compiler should reference.
//
//go:generate mockgen -source=package_resolver.go -destination=mocks/mock_package_resolver.go -package=mocks
type PackageResolver interface {
	// Resolve returns the reference paths for spec (name or name@version).
	// Failures wrap domain.ErrPackageResolution.
	Resolve(ctx context.Context, spec string) ([]string, error)
}
