package config

// File represents the structure of the gscript.yaml configuration file.
// Every section is optional; absent keys keep their defaults.
type File struct {
	Cache     *CacheDTO     `yaml:"cache"`
	Resolver  *ResolverDTO  `yaml:"resolver"`
	Backend   *BackendDTO   `yaml:"backend"`
	Packages  *PackagesDTO  `yaml:"packages"`
	Telemetry *TelemetryDTO `yaml:"telemetry"`
}

// CacheDTO is the cache section.
type CacheDTO struct {
	Dir      string `yaml:"dir"`
	Disabled *bool  `yaml:"disabled"`
}

// ResolverDTO is the resolver section.
type ResolverDTO struct {
	SearchDirs []string `yaml:"search_dirs"`
	Path       []string `yaml:"path"`
	Extensions []string `yaml:"extensions"`
	Lenient    *bool    `yaml:"lenient"`
}

// BackendDTO is the backend section.
type BackendDTO struct {
	Default  string       `yaml:"default"`
	External *ExternalDTO `yaml:"external"`
}

// ExternalDTO configures the external compiler process.
type ExternalDTO struct {
	Command        string   `yaml:"command"`
	ExecutableArgs []string `yaml:"executable_args"`
	LibraryArgs    []string `yaml:"library_args"`
	CheckArgs      []string `yaml:"check_args"`
	Timeout        string   `yaml:"timeout"`
	Env            []string `yaml:"env"`
}

// PackagesDTO is the packages section.
type PackagesDTO struct {
	Root string `yaml:"root"`
}

// TelemetryDTO is the telemetry section.
type TelemetryDTO struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}
