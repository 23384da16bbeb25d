// Package config provides the configuration loader for gscript.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file and an environment overlay.
type Loader struct {
	Logger ports.Logger
	// FS replaces the OS filesystem when set. It is mounted at Root: the absolute
	// path Root/a/b is read as a/b, and paths outside Root do not exist.
	FS   fs.FS
	Root string
	// Env is consulted after the file. It is created by NewEnvOverlay unless replaced.
	Env *viper.Viper
}

// NewLoader creates a new Loader reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Env: NewEnvOverlay()}
}

// NewLoaderWithFS creates a new Loader reading fsys mounted at root.
func NewLoaderWithFS(logger ports.Logger, root string, fsys fs.FS) *Loader {
	return &Loader{Logger: logger, FS: fsys, Root: root, Env: NewEnvOverlay()}
}

// Load finds gscript.yaml by walking up from cwd and merges it over the defaults.
// A missing file is not an error.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	configPath, err := l.find(cwd)
	if err != nil {
		return nil, err
	}

	base := cwd
	if configPath != "" {
		file, err := l.read(configPath)
		if err != nil {
			return nil, err
		}
		base = filepath.Dir(configPath)
		if err := applyFile(cfg, file, base); err != nil {
			return nil, zerr.With(err, "path", configPath)
		}
		cfg.Path = configPath
	}

	if l.Env != nil {
		if err := ApplyOverlay(cfg, l.Env, cwd); err != nil {
			return nil, err
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	if cfg.Cache.Disabled {
		l.Logger.Warn("compilation cache disabled by configuration")
	}

	return cfg, nil
}

func (l *Loader) find(cwd string) (string, error) {
	currentDir := filepath.Clean(cwd)
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		info, err := l.stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", candidate)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", nil
		}
		currentDir = parentDir
	}
}

func (l *Loader) stat(path string) (fs.FileInfo, error) {
	if l.FS == nil {
		return os.Stat(path)
	}
	name, err := l.name(path)
	if err != nil {
		return nil, err
	}
	return fs.Stat(l.FS, name)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if l.FS == nil {
		// #nosec G304 -- path is a config file candidate found by walking up from cwd
		return os.ReadFile(path)
	}
	name, err := l.name(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(l.FS, name)
}

// name maps an absolute path to its name in FS.
func (l *Loader) name(path string) (string, error) {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fs.ErrNotExist
	}
	return filepath.ToSlash(rel), nil
}

func (l *Loader) read(configPath string) (*File, error) {
	data, err := l.readFile(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", configPath)
	}

	return &file, nil
}

func applyFile(cfg *domain.Config, file *File, base string) error {
	if c := file.Cache; c != nil {
		if c.Dir != "" {
			cfg.Cache.Dir = resolvePath(base, c.Dir)
		}
		if c.Disabled != nil {
			cfg.Cache.Disabled = *c.Disabled
		}
	}

	if r := file.Resolver; r != nil {
		cfg.Resolver.SearchDirs = append(cfg.Resolver.SearchDirs, resolvePaths(base, r.SearchDirs)...)
		cfg.Resolver.Path = append(cfg.Resolver.Path, resolvePaths(base, r.Path)...)
		if len(r.Extensions) > 0 {
			cfg.Resolver.Extensions = r.Extensions
		}
		if r.Lenient != nil {
			cfg.Resolver.Lenient = *r.Lenient
		}
	}

	if b := file.Backend; b != nil {
		if b.Default != "" {
			cfg.Backend.Default = b.Default
		}
		if err := applyExternal(&cfg.Backend.External, b.External); err != nil {
			return err
		}
	}

	if p := file.Packages; p != nil && p.Root != "" {
		cfg.Packages.Root = resolvePath(base, p.Root)
	}

	if t := file.Telemetry; t != nil && t.OTLPEndpoint != "" {
		cfg.Telemetry.OTLPEndpoint = t.OTLPEndpoint
	}

	return nil
}

func applyExternal(ext *domain.ExternalBackendConfig, dto *ExternalDTO) error {
	if dto == nil {
		return nil
	}
	if dto.Command != "" {
		ext.Command = dto.Command
	}
	if len(dto.ExecutableArgs) > 0 {
		ext.ExecutableArgs = dto.ExecutableArgs
	}
	if len(dto.LibraryArgs) > 0 {
		ext.LibraryArgs = dto.LibraryArgs
	}
	if len(dto.CheckArgs) > 0 {
		ext.CheckArgs = dto.CheckArgs
	}
	if dto.Timeout != "" {
		d, err := time.ParseDuration(dto.Timeout)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidConfig.Error()), "key", "backend.external.timeout")
		}
		ext.Timeout = d
	}
	ext.Env = append(ext.Env, dto.Env...)
	return nil
}

// Validate normalizes cfg in place and rejects values no component can work with.
func Validate(cfg *domain.Config) error {
	if cfg.Backend.Default == "" {
		return zerr.With(domain.Detail(domain.ErrInvalidConfig, "empty default backend"), "key", "backend.default")
	}
	if cfg.Backend.External.Timeout <= 0 {
		return zerr.With(domain.Detail(domain.ErrInvalidConfig, "timeout must be positive"), "key", "backend.external.timeout")
	}
	if len(cfg.Resolver.Extensions) == 0 {
		cfg.Resolver.Extensions = []string{domain.DefaultExtension}
	}
	for i, ext := range cfg.Resolver.Extensions {
		if !strings.HasPrefix(ext, ".") {
			cfg.Resolver.Extensions[i] = "." + ext
		}
	}
	return nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

func resolvePaths(base string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		out = append(out, resolvePath(base, p))
	}
	return out
}
