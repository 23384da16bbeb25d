package cas_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/adapters/cas"
	"go.trai.ch/gscript/internal/core/domain"
)

func newStore(t *testing.T) *cas.Store {
	t.Helper()
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStore_PutGetInMemory(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	art := &domain.Artifact{
		Fingerprint: "a2c4f955d3f89257",
		Backend:     "yaegi",
		Target:      domain.TargetMemoryLibrary,
		Blob:        []byte("package script\n"),
		DebugInfo:   &domain.LineMap{Unit: "script.go", Segments: []domain.LineSegment{{Start: 3, Count: 2, File: "/s/main.cs", FileLine: 1}}},
		CreatedAt:   time.Now().Truncate(time.Second), // JSON drops the monotonic clock
		Entry:       "Main",
		Args:        []string{"-v"},
	}

	stored, err := store.Put(art)
	require.NoError(t, err)
	assert.Empty(t, stored.Path)

	got, err := store.Get(art.Fingerprint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, art.Blob, got.Blob)
	assert.Equal(t, art.DebugInfo, got.DebugInfo)
	assert.Equal(t, art.Entry, got.Entry)
	assert.Equal(t, art.Args, got.Args)
	assert.True(t, art.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	got, err := store.Get("0000000000000000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_GetCorruptRecord(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	dir := filepath.Join(store.Root(), domain.RecordsDirName)
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deadbeef.json"), []byte("{not json"), domain.FilePerm))

	got, err := store.Get("deadbeef")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), domain.ErrStoreUnmarshalFailed.Error())
}

func TestStore_PutMovesStagedFile(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	staging, err := store.Stage()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(staging))

	out := filepath.Join(staging, "main")
	require.NoError(t, os.WriteFile(out, []byte("binary"), domain.ExecPerm))

	stored, err := store.Put(&domain.Artifact{
		Fingerprint: "feedface",
		Backend:     "go",
		Target:      domain.TargetDiskExecutable,
		Path:        out,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(store.Root(), domain.ArtifactsDirName, "feedface", "main"), stored.Path)
	data, err := os.ReadFile(stored.Path)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))

	_, err = os.Stat(staging)
	assert.True(t, errors.Is(err, os.ErrNotExist), "staging dir should be removed")

	got, err := store.Get("feedface")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored.Path, got.Path)
}

func TestStore_StageIsUnique(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	a, err := store.Stage()
	require.NoError(t, err)
	b, err := store.Stage()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_RemoveListClean(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	for _, fp := range []domain.Fingerprint{"bb", "aa", "cc"} {
		_, err := store.Put(&domain.Artifact{Fingerprint: fp, Backend: "yaegi", Blob: []byte("x"), CreatedAt: time.Now()})
		require.NoError(t, err)
	}

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.Fingerprint("aa"), list[0].Fingerprint)
	assert.Equal(t, domain.Fingerprint("cc"), list[2].Fingerprint)

	require.NoError(t, store.Remove("bb"))
	require.NoError(t, store.Remove("missing"))

	got, err := store.Get("bb")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Clean())
	list, err = store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ListEmptyRoot(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ConcurrentPut(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Put(&domain.Artifact{Fingerprint: "same", Backend: "yaegi", Blob: []byte("x"), CreatedAt: time.Now()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get("same")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("x"), got.Blob)
}
