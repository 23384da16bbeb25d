// Package cas implements the on-disk compilation artifact store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactStore = (*Store)(nil)

const stagingDirName = "staging"

// Store implements ports.ArtifactStore with one JSON record and one artifact directory per fingerprint.
// Every file becomes visible through a rename, so concurrent processes sharing the root never
// observe a partial write.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root. Directories are created on first write.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "root", root)
	}
	return &Store{root: abs}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Get retrieves the record for fp.
func (s *Store) Get(fp domain.Fingerprint) (*domain.Artifact, error) {
	//nolint:gosec // Path is constructed from the store root and a hex fingerprint
	data, err := os.ReadFile(s.recordPath(fp))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "fingerprint", fp.String())
	}

	var art domain.Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "fingerprint", fp.String())
	}
	if art.Fingerprint != fp {
		return nil, zerr.With(domain.Detail(domain.ErrStoreUnmarshalFailed, "fingerprint mismatch"), "fingerprint", fp.String())
	}

	return &art, nil
}

// Put stores art. On-disk artifacts are renamed from the staging area into the store.
func (s *Store) Put(art *domain.Artifact) (*domain.Artifact, error) {
	stored := *art

	if art.Path != "" {
		dir := s.artifactDir(art.Fingerprint)
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return nil, zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
		}
		dest := filepath.Join(dir, filepath.Base(art.Path))
		if err := os.Rename(art.Path, dest); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", art.Path)
		}
		s.dropStaging(art.Path)
		stored.Path = dest
	}

	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}
	if err := atomicWriteFile(s.recordPath(art.Fingerprint), data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "fingerprint", art.Fingerprint.String())
	}

	return &stored, nil
}

// Stage creates a fresh staging directory inside the store root.
func (s *Store) Stage() (string, error) {
	base := filepath.Join(s.root, stagingDirName)
	if err := os.MkdirAll(base, domain.DirPerm); err != nil {
		return "", zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	dir, err := os.MkdirTemp(base, "build-*")
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}
	return dir, nil
}

// Remove evicts the record and artifact files of fp.
func (s *Store) Remove(fp domain.Fingerprint) error {
	if err := os.Remove(s.recordPath(fp)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreRemoveFailed.Error()), "fingerprint", fp.String())
	}
	if err := os.RemoveAll(s.artifactDir(fp)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreRemoveFailed.Error()), "fingerprint", fp.String())
	}
	return nil
}

// List returns every readable record, ordered by fingerprint. Unreadable records are skipped.
func (s *Store) List() ([]*domain.Artifact, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, domain.RecordsDirName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var out []*domain.Artifact
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		art, err := s.Get(domain.Fingerprint(strings.TrimSuffix(name, ".json")))
		if err != nil || art == nil {
			continue
		}
		out = append(out, art)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fingerprint < out[j].Fingerprint })

	return out, nil
}

// Clean removes every record, artifact and staging directory.
func (s *Store) Clean() error {
	var errs error
	for _, name := range []string{domain.RecordsDirName, domain.ArtifactsDirName, stagingDirName} {
		if err := os.RemoveAll(filepath.Join(s.root, name)); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, domain.ErrStoreRemoveFailed.Error()))
		}
	}
	return errs
}

func (s *Store) recordPath(fp domain.Fingerprint) string {
	return filepath.Join(s.root, domain.RecordsDirName, fp.String()+".json")
}

func (s *Store) artifactDir(fp domain.Fingerprint) string {
	return filepath.Join(s.root, domain.ArtifactsDirName, fp.String())
}

// dropStaging removes the staging directory that held path, if path was staged here.
func (s *Store) dropStaging(path string) {
	staging := filepath.Join(s.root, stagingDirName) + string(filepath.Separator)
	dir := filepath.Dir(path)
	if strings.HasPrefix(dir+string(filepath.Separator), staging) && dir+string(filepath.Separator) != staging {
		_ = os.RemoveAll(dir)
	}
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, ".record-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
