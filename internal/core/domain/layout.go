package domain

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name used for user-level directories and environment prefixes.
	AppName = "gscript"

	// ProjectDirName is the name of the per-project working directory.
	ProjectDirName = ".gscript"

	// CacheDirName is the name of the compilation cache directory.
	CacheDirName = "cache"

	// ArtifactsDirName holds compiled artifacts, one directory per fingerprint.
	ArtifactsDirName = "artifacts"

	// RecordsDirName holds artifact metadata records.
	RecordsDirName = "records"

	// PackagesDirName is the name of the local package root.
	PackagesDirName = "packages"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "gscript.yaml"

	// DirectivePrefix starts every directive line.
	DirectivePrefix = "//gs_"

	// DefaultExtension is tried when an import names a file without an extension.
	DefaultExtension = ".cs"

	// LinkFileExtension marks a file whose content names another file.
	LinkFileExtension = ".lnk"

	// DefaultRootTypeName is the package name given to concatenated compile units.
	DefaultRootTypeName = "script"

	// DefaultEncoding is the text encoding assumed for source units.
	DefaultEncoding = "utf-8"

	// PathEnvVar lists fallback search directories, separated by os.PathListSeparator.
	PathEnvVar = "GSCRIPT_PATH"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecPerm is the permission for compiled executables (rwxr-xr-x).
	ExecPerm = 0o755

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCachePath returns the shared compilation cache directory.
// It prefers the user cache directory and falls back to .gscript/cache in the working directory.
func DefaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(ProjectDirName, CacheDirName)
}

// DefaultPackagesPath returns the default local package root.
func DefaultPackagesPath() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ProjectDirName, PackagesDirName)
	}
	return filepath.Join(ProjectDirName, PackagesDirName)
}
