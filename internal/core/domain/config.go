package domain

import "time"

// DefaultCompileTimeout bounds a single external compiler invocation.
const DefaultCompileTimeout = 2 * time.Minute

// Config is the effective configuration after defaults, file and environment are merged.
type Config struct {
	// Path is the configuration file the values came from, or "" when only defaults apply.
	Path      string
	Cache     CacheConfig
	Resolver  ResolverConfig
	Backend   BackendConfig
	Packages  PackagesConfig
	Telemetry TelemetryConfig
}

// CacheConfig configures the compilation cache.
type CacheConfig struct {
	Dir      string
	Disabled bool
}

// ResolverConfig configures dependency resolution.
type ResolverConfig struct {
	SearchDirs []string
	Path       []string
	Extensions []string
	Lenient    bool
}

// BackendConfig configures backend selection.
type BackendConfig struct {
	Default  string
	External ExternalBackendConfig
}

// ExternalBackendConfig configures the external compiler process.
// Argument templates may use {output}, {sources}, {references}, {flags} and {resources}.
type ExternalBackendConfig struct {
	Command        string
	ExecutableArgs []string
	LibraryArgs    []string
	CheckArgs      []string
	Timeout        time.Duration
	Env            []string
}

// PackagesConfig configures the local package resolver.
type PackagesConfig struct {
	Root string
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	OTLPEndpoint string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{Dir: DefaultCachePath()},
		Resolver: ResolverConfig{
			Extensions: []string{DefaultExtension},
		},
		Backend: BackendConfig{
			Default: "yaegi",
			External: ExternalBackendConfig{
				Command:        "go",
				ExecutableArgs: []string{"build", "-o", "{output}", "{flags}", "{sources}"},
				LibraryArgs:    []string{"build", "-buildmode=plugin", "-o", "{output}", "{flags}", "{sources}"},
				CheckArgs:      []string{"vet", "{flags}", "{sources}"},
				Timeout:        DefaultCompileTimeout,
			},
		},
		Packages: PackagesConfig{Root: DefaultPackagesPath()},
	}
}
