package domain

import "time"

// SourceUnit is one parsed source file. It is immutable once created.
type SourceUnit struct {
	// Path is the canonical absolute path of the file.
	Path string
	// Text is the decoded source text.
	Text string
	// ModTime is the modification time observed when the file was read.
	ModTime time.Time
	// Size is the file size observed when the file was read.
	Size int64
	// ContentHash is the hex digest of Text.
	ContentHash string
	// Directives is the parsed directive set.
	Directives DirectiveSet
	// Missing marks a placeholder created in lenient mode for a file that does not exist.
	Missing bool
}

// ImportEdge links an importing unit to an imported one.
type ImportEdge struct {
	From         string            `json:"from"`
	To           string            `json:"to"`
	RenameMap    map[string]string `json:"rename_map,omitempty"`
	PreserveMain bool              `json:"preserve_main,omitempty"`
}

// Reference is a resolved reference directive.
// Path and ModTime are empty for symbolic references that do not name a file.
type Reference struct {
	Identity string    `json:"identity"`
	Path     string    `json:"path,omitempty"`
	ModTime  time.Time `json:"mod_time,omitzero"`
}

// IsFile reports whether the reference resolved to a file or directory on disk.
func (r Reference) IsFile() bool {
	return r.Path != ""
}
