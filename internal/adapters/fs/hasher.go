package fs

import (
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes xxhash fingerprints of compile requests.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashContent returns the xxhash digest of data as 16 hex characters.
func (h *Hasher) HashContent(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Fingerprint digests every input that can change the compiled output: each unit's path,
// content and modification time, the import edges, each reference's identity and
// modification time, packages, compiler options, resources and the backend identity.
func (h *Hasher) Fingerprint(req *domain.CompileRequest) (domain.Fingerprint, error) {
	if req == nil || len(req.Units) == 0 {
		return "", domain.Detail(domain.ErrScriptNotFound, "empty compile request")
	}

	hasher := xxhash.New()

	for _, u := range req.Units {
		contentHash := u.ContentHash
		if contentHash == "" {
			contentHash = h.HashContent([]byte(u.Text))
		}
		writeString(hasher, u.Path)
		writeString(hasher, contentHash)
		if err := writeInt(hasher, stamp(u.ModTime)); err != nil {
			return "", err
		}
		if u.Missing {
			writeString(hasher, "missing")
		}
	}
	endSection(hasher)

	for _, e := range req.Edges {
		writeString(hasher, e.From)
		writeString(hasher, e.To)
		keys := make([]string, 0, len(e.RenameMap))
		for k := range e.RenameMap {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			writeString(hasher, k+"="+e.RenameMap[k])
		}
		if e.PreserveMain {
			writeString(hasher, domain.PreserveMainFlag)
		}
		endSection(hasher)
	}
	endSection(hasher)

	for _, ref := range req.References {
		writeString(hasher, ref.Identity)
		writeString(hasher, ref.Path)
		if err := writeInt(hasher, stamp(ref.ModTime)); err != nil {
			return "", err
		}
	}
	endSection(hasher)

	for _, list := range [][]string{req.Packages, req.CompilerOptions, req.Resources} {
		for _, item := range list {
			writeString(hasher, item)
		}
		endSection(hasher)
	}

	writeString(hasher, req.Backend)
	writeString(hasher, string(req.Target))
	writeString(hasher, req.RootTypeName)
	writeString(hasher, req.Encoding)

	return domain.Fingerprint(fmt.Sprintf("%016x", hasher.Sum64())), nil
}

func writeString(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0})
}

func writeInt(hasher *xxhash.Digest, v int64) error {
	if err := binary.Write(hasher, binary.LittleEndian, v); err != nil {
		return zerr.Wrap(err, domain.ErrWriteHashFailed.Error())
	}
	return nil
}

// stamp returns t in Unix nanoseconds, or 0 for the zero time.
func stamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func endSection(hasher *xxhash.Digest) {
	_, _ = hasher.Write([]byte{0})
}
