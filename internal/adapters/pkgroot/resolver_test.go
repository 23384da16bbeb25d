package pkgroot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/adapters/pkgroot"
	"go.trai.ch/gscript/internal/core/domain"
)

func setupRoot(t *testing.T, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), domain.DirPerm))
	}
	return root
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	root := setupRoot(t,
		"json/v1.2.0",
		"json/1.10.0",
		"json/v2.0.0-beta.1",
		"json/not-a-version",
		"example.com/text/v0.3.0",
		"beta/v1.0.0-rc.1",
		"beta/v1.0.0-rc.2",
	)
	r := pkgroot.NewResolver(root)

	tests := []struct {
		spec string
		want string
	}{
		{spec: "json", want: "json/1.10.0"},
		{spec: "json@1.2.0", want: "json/v1.2.0"},
		{spec: "json@v1.10.0", want: "json/1.10.0"},
		{spec: "json@2.0.0-beta.1", want: "json/v2.0.0-beta.1"},
		{spec: "example.com/text", want: "example.com/text/v0.3.0"},
		{spec: "beta", want: "beta/v1.0.0-rc.2"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()
			got, err := r.Resolve(context.Background(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, []string{filepath.Join(root, filepath.FromSlash(tt.want))}, got)
		})
	}
}

func TestResolver_Errors(t *testing.T) {
	t.Parallel()

	root := setupRoot(t, "json/v1.2.0", "empty")
	r := pkgroot.NewResolver(root)

	tests := []struct {
		spec    string
		wantErr error
	}{
		{spec: "missing", wantErr: domain.ErrPackageResolution},
		{spec: "empty", wantErr: domain.ErrPackageResolution},
		{spec: "json@9.9.9", wantErr: domain.ErrPackageResolution},
		{spec: "json@latest", wantErr: domain.ErrInvalidPackageSpec},
		{spec: "", wantErr: domain.ErrInvalidPackageSpec},
		{spec: "bad name", wantErr: domain.ErrInvalidPackageSpec},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()
			_, err := r.Resolve(context.Background(), tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestResolver_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pkgroot.NewResolver(t.TempDir()).Resolve(ctx, "json")
	assert.ErrorIs(t, err, context.Canceled)
}
