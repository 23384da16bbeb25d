package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

// Overlay keys. Nested keys map to GSCRIPT_<SECTION>_<KEY> environment variables.
const (
	KeyCacheDir          = "cache.dir"
	KeyCacheDisabled     = "cache.disabled"
	KeySearchDirs        = "resolver.search_dirs"
	KeyResolverPath      = "resolver.path"
	KeyExtensions        = "resolver.extensions"
	KeyLenient           = "resolver.lenient"
	KeyBackend           = "backend.default"
	KeyExternalCommand   = "backend.external.command"
	KeyExecutableArgs    = "backend.external.executable_args"
	KeyLibraryArgs       = "backend.external.library_args"
	KeyCheckArgs         = "backend.external.check_args"
	KeyExternalTimeout   = "backend.external.timeout"
	KeyPackagesRoot      = "packages.root"
	KeyTelemetryEndpoint = "telemetry.otlp_endpoint"

	// KeyPathList holds the GSCRIPT_PATH fallback list, appended after resolver.path.
	KeyPathList = "path"
)

// NewEnvOverlay returns a viper instance that reads GSCRIPT_* environment variables.
func NewEnvOverlay() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(domain.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyPathList, domain.PathEnvVar)
	return v
}

// ApplyOverlay copies every key set in v onto cfg. Relative paths resolve against base.
// Environment values holding lists are split with the OS path list separator for
// directories and on whitespace or commas otherwise; flag values arrive as slices.
func ApplyOverlay(cfg *domain.Config, v *viper.Viper, base string) error {
	if v.IsSet(KeyCacheDir) {
		cfg.Cache.Dir = resolvePath(base, v.GetString(KeyCacheDir))
	}
	if v.IsSet(KeyCacheDisabled) {
		cfg.Cache.Disabled = v.GetBool(KeyCacheDisabled)
	}
	if v.IsSet(KeySearchDirs) {
		cfg.Resolver.SearchDirs = resolvePaths(base, pathList(v, KeySearchDirs))
	}
	if v.IsSet(KeyResolverPath) {
		cfg.Resolver.Path = resolvePaths(base, pathList(v, KeyResolverPath))
	}
	if v.IsSet(KeyPathList) {
		cfg.Resolver.Path = append(cfg.Resolver.Path, resolvePaths(base, pathList(v, KeyPathList))...)
	}
	if v.IsSet(KeyExtensions) {
		cfg.Resolver.Extensions = wordList(v, KeyExtensions)
	}
	if v.IsSet(KeyLenient) {
		cfg.Resolver.Lenient = v.GetBool(KeyLenient)
	}
	if v.IsSet(KeyBackend) {
		cfg.Backend.Default = v.GetString(KeyBackend)
	}

	ext := &cfg.Backend.External
	if v.IsSet(KeyExternalCommand) {
		ext.Command = v.GetString(KeyExternalCommand)
	}
	if v.IsSet(KeyExecutableArgs) {
		ext.ExecutableArgs = wordList(v, KeyExecutableArgs)
	}
	if v.IsSet(KeyLibraryArgs) {
		ext.LibraryArgs = wordList(v, KeyLibraryArgs)
	}
	if v.IsSet(KeyCheckArgs) {
		ext.CheckArgs = wordList(v, KeyCheckArgs)
	}
	if v.IsSet(KeyExternalTimeout) {
		d, err := time.ParseDuration(v.GetString(KeyExternalTimeout))
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "key", KeyExternalTimeout)
		}
		ext.Timeout = d
	}

	if v.IsSet(KeyPackagesRoot) {
		cfg.Packages.Root = resolvePath(base, v.GetString(KeyPackagesRoot))
	}
	if v.IsSet(KeyTelemetryEndpoint) {
		cfg.Telemetry.OTLPEndpoint = v.GetString(KeyTelemetryEndpoint)
	}

	return nil
}

func pathList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return filepath.SplitList(s)
	}
	return v.GetStringSlice(key)
}

func wordList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
	}
	return v.GetStringSlice(key)
}
