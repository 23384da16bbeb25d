package domain

import "time"

// TargetKind describes what a compilation produces.
type TargetKind string

const (
	// TargetMemoryLibrary is a library loaded directly into the running process.
	TargetMemoryLibrary TargetKind = "memory-library"
	// TargetDiskLibrary is a library written to disk and loaded from there.
	TargetDiskLibrary TargetKind = "disk-library"
	// TargetDiskExecutable is a native executable written to disk.
	TargetDiskExecutable TargetKind = "disk-executable"
)

// IsValid reports whether k names a known target kind.
func (k TargetKind) IsValid() bool {
	switch k {
	case TargetMemoryLibrary, TargetDiskLibrary, TargetDiskExecutable:
		return true
	default:
		return false
	}
}

// OnDisk reports whether the target produces a file.
func (k TargetKind) OnDisk() bool {
	return k == TargetDiskLibrary || k == TargetDiskExecutable
}

// Fingerprint is the cache key of a compile request.
type Fingerprint string

// String returns the fingerprint as a string.
func (f Fingerprint) String() string {
	return string(f)
}

// CompileRequest is the flattened, deduplicated input of one compilation.
// It is built once per resolution pass and not modified afterwards.
type CompileRequest struct {
	// Units holds every source unit in first-seen pre-order. Units[0] is the entry script.
	Units []*SourceUnit
	// Edges holds the import graph.
	Edges           []ImportEdge
	References      []Reference
	Packages        []string
	CompilerOptions []string
	Resources       []string
	Args            []string
	SearchDirs      []string
	// Backend is the selected backend name. Empty means the configured default.
	Backend      string
	Target       TargetKind
	RootTypeName string
	Encoding     string
}

// Entry returns the entry unit of the request.
func (r *CompileRequest) Entry() *SourceUnit {
	if r == nil || len(r.Units) == 0 {
		return nil
	}
	return r.Units[0]
}

// Paths returns the canonical paths of all units in order.
func (r *CompileRequest) Paths() []string {
	paths := make([]string, 0, len(r.Units))
	for _, u := range r.Units {
		paths = append(paths, u.Path)
	}
	return paths
}

// NewestInput returns the latest modification time across units and file references.
func (r *CompileRequest) NewestInput() time.Time {
	var newest time.Time
	for _, u := range r.Units {
		if u.ModTime.After(newest) {
			newest = u.ModTime
		}
	}
	for _, ref := range r.References {
		if ref.ModTime.After(newest) {
			newest = ref.ModTime
		}
	}
	return newest
}

// PreserveMain reports whether path was imported with the preserve_main option on any edge.
func (r *CompileRequest) PreserveMain(path string) bool {
	for _, e := range r.Edges {
		if e.To == path && e.PreserveMain {
			return true
		}
	}
	return false
}
