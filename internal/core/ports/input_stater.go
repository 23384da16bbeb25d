package ports

import "time"

// InputStater reports modification times of resolver inputs.
//
//go:generate mockgen -source=input_stater.go -destination=mocks/mock_input_stater.go -package=mocks
type InputStater interface {
	// NewestModTime returns the modification time of path or, for a directory,
	// the newest modification time of any file beneath it.
	NewestModTime(path string) (time.Time, error)
}
