package domain

import "go.trai.ch/zerr"

var (
	// ErrScriptNotFound is returned when a script or import cannot be found in any probed location.
	ErrScriptNotFound = zerr.New("script not found")

	// ErrCyclicImport is returned when the import graph of a script contains a cycle.
	ErrCyclicImport = zerr.New("cyclic import detected")

	// ErrDirectiveSyntax is returned when a directive argument is lexically malformed.
	ErrDirectiveSyntax = zerr.New("malformed directive")

	// ErrUnsupportedBackend is returned when a backend name is unknown or cannot produce the requested target.
	ErrUnsupportedBackend = zerr.New("unsupported backend")

	// ErrBackendUnavailable is returned when a backend fails for infrastructure reasons.
	ErrBackendUnavailable = zerr.New("backend unavailable")

	// ErrCompile is returned when a caller needs an error value for a failed compilation.
	ErrCompile = zerr.New("compilation failed")

	// ErrAmbiguousMethod is returned when more than one member matches an invocation equally well.
	ErrAmbiguousMethod = zerr.New("ambiguous method match")

	// ErrMemberNotFound is returned when no type or member matches a spec.
	ErrMemberNotFound = zerr.New("member not found")

	// ErrScriptRuntime is returned when invoked script code panics or fails.
	ErrScriptRuntime = zerr.New("script raised an error")

	// ErrPackageResolution is returned when a package spec cannot be resolved.
	ErrPackageResolution = zerr.New("failed to resolve package")

	// ErrContextUnloaded is returned when a handle is used after its load context was unloaded.
	ErrContextUnloaded = zerr.New("load context has been unloaded")

	// ErrInstanceRequired is returned when an instance member is invoked without a matching instance.
	ErrInstanceRequired = zerr.New("instance member requires an instance of its type")

	// ErrNoEntryPoint is returned when a script without a main function is run.
	ErrNoEntryPoint = zerr.New("script has no entry point")

	// ErrInvalidPackageSpec is returned when a package spec is not of the form name[@version].
	ErrInvalidPackageSpec = zerr.New("invalid package spec, expected format: name[@version]")

	// ErrInvalidLinkFile is returned when a link file does not name a target.
	ErrInvalidLinkFile = zerr.New("link file does not name a target")

	// ErrTargetNotSupported is returned when a target kind is not supported by any registered backend.
	ErrTargetNotSupported = zerr.New("target kind not supported")

	// ErrNotLoadable is returned when a backend cannot load the artifacts it produces.
	ErrNotLoadable = zerr.New("artifact cannot be loaded in-process")

	// ErrArtifactVanished is returned when a cached artifact disappeared between lookup and use.
	ErrArtifactVanished = zerr.New("cached artifact vanished")

	// ErrCompileCancelled is returned when an in-flight compilation was cancelled.
	ErrCompileCancelled = zerr.New("compilation cancelled")

	// ErrStoreCreateFailed is returned when the artifact store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create artifact store directory")

	// ErrStoreReadFailed is returned when an artifact record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read artifact record")

	// ErrStoreUnmarshalFailed is returned when an artifact record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal artifact record")

	// ErrStoreMarshalFailed is returned when an artifact record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal artifact record")

	// ErrStoreWriteFailed is returned when an artifact or its record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write artifact")

	// ErrStoreRemoveFailed is returned when an artifact cannot be evicted.
	ErrStoreRemoveFailed = zerr.New("failed to remove artifact")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrWriteHashFailed is returned when writing to the digest fails.
	ErrWriteHashFailed = zerr.New("failed to write hash to digest")

	// ErrProcessStartFailed is returned when a child process cannot be started.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrProcessFailed is returned when a script executable exits unsuccessfully.
	ErrProcessFailed = zerr.New("script process failed")

	// ErrWatchFailed is returned when source files cannot be watched.
	ErrWatchFailed = zerr.New("failed to watch sources")
)

// kindError tags an error chain with a sentinel so that errors.Is matches both.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string {
	return e.err.Error()
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.err}
}

// WrapKind wraps cause under kind's message. errors.Is reports true for kind and for cause.
// If cause is nil, WrapKind returns nil.
func WrapKind(cause, kind error) error {
	if cause == nil {
		return nil
	}
	return &kindError{kind: kind, err: zerr.Wrap(cause, kind.Error())}
}

// Detail returns kind prefixed with detail. errors.Is reports true for kind.
func Detail(kind error, detail string) error {
	return zerr.Wrap(kind, detail)
}
