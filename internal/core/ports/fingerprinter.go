package ports

import "go.trai.ch/gscript/internal/core/domain"

// Fingerprinter computes cache keys.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// Fingerprint digests the complete input identity of a compile request.
	Fingerprint(req *domain.CompileRequest) (domain.Fingerprint, error)

	// HashContent returns the content digest recorded on a source unit.
	HashContent(data []byte) string
}
