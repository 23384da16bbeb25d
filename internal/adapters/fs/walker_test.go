package fs_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/adapters/fs"
	"go.trai.ch/gscript/internal/core/domain"
)

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	now := time.Now()
	writeFile(t, filepath.Join(tmpDir, ".git", "config"), "git", now)
	writeFile(t, filepath.Join(tmpDir, ".gscript", "cache", "x"), "cache", now)
	writeFile(t, filepath.Join(tmpDir, "ignored", "file"), "ignored", now)
	writeFile(t, filepath.Join(tmpDir, "src", "main.cs"), "package main", now)
	writeFile(t, filepath.Join(tmpDir, "README.md"), "# readme", now)

	var files []string
	for f := range fs.NewWalker().WalkFiles(tmpDir, []string{"ignored"}) {
		rel, err := filepath.Rel(tmpDir, f)
		require.NoError(t, err)
		files = append(files, rel)
	}
	slices.Sort(files)

	assert.Equal(t, []string{"README.md", filepath.Join("src", "main.cs")}, files)
}

func TestWalker_NewestModTime(t *testing.T) {
	tmpDir := t.TempDir()
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	writeFile(t, filepath.Join(tmpDir, "lib", "a.go"), "a", old)
	writeFile(t, filepath.Join(tmpDir, "lib", "nested", "b.go"), "b", newer)
	lib := filepath.Join(tmpDir, "lib")
	require.NoError(t, os.Chtimes(filepath.Join(lib, "nested"), old, old))
	require.NoError(t, os.Chtimes(lib, old, old))

	w := fs.NewWalker()

	got, err := w.NewestModTime(lib)
	require.NoError(t, err)
	assert.True(t, got.Equal(newer), "got %v", got)

	got, err = w.NewestModTime(filepath.Join(lib, "a.go"))
	require.NoError(t, err)
	assert.True(t, got.Equal(old), "got %v", got)

	_, err = w.NewestModTime(filepath.Join(tmpDir, "missing"))
	require.Error(t, err)
}
