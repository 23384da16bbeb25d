package fs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/adapters/fs"
	"go.trai.ch/gscript/internal/core/domain"
)

// expectedFingerprint is the hardcoded golden fingerprint for goldenRequest.
// If this changes, every cached artifact of every user is invalidated.
// Validate the change carefully before updating this constant.
const expectedFingerprint = "a2c4f955d3f89257"

func goldenRequest() *domain.CompileRequest {
	return &domain.CompileRequest{
		Units: []*domain.SourceUnit{{
			Path:        "/scripts/main.cs",
			ContentHash: "0123456789abcdef",
			ModTime:     time.Unix(1700000000, 0),
		}},
		References:      []domain.Reference{{Identity: "fmt"}},
		CompilerOptions: []string{"-tags=dev"},
		Backend:         "yaegi",
		Target:          domain.TargetMemoryLibrary,
		RootTypeName:    "script",
		Encoding:        "utf-8",
	}
}

func TestHasher_Fingerprint_Golden(t *testing.T) {
	fp, err := fs.NewHasher().Fingerprint(goldenRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint(expectedFingerprint), fp)
}

func TestHasher_HashContent(t *testing.T) {
	h := fs.NewHasher()
	assert.Equal(t, "9d7cd40d3d9ce34a", h.HashContent([]byte("package main\n")))
	assert.Equal(t, "ef46db3751d8e999", h.HashContent(nil))
}

func TestHasher_Fingerprint_Sensitivity(t *testing.T) {
	h := fs.NewHasher()
	base, err := h.Fingerprint(goldenRequest())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(r *domain.CompileRequest)
	}{
		{"unit content", func(r *domain.CompileRequest) { r.Units[0].ContentHash = "fedcba9876543210" }},
		{"unit mtime", func(r *domain.CompileRequest) { r.Units[0].ModTime = r.Units[0].ModTime.Add(time.Second) }},
		{"unit path", func(r *domain.CompileRequest) { r.Units[0].Path = "/scripts/other.cs" }},
		{"added dependency", func(r *domain.CompileRequest) {
			r.Units = append(r.Units, &domain.SourceUnit{Path: "/scripts/lib.cs", ContentHash: "1"})
		}},
		{"reference mtime", func(r *domain.CompileRequest) {
			r.References[0] = domain.Reference{Identity: "fmt", Path: "/lib/fmt", ModTime: time.Unix(1, 0)}
		}},
		{"compiler options", func(r *domain.CompileRequest) { r.CompilerOptions = []string{"-tags=prod"} }},
		{"backend", func(r *domain.CompileRequest) { r.Backend = "go" }},
		{"target", func(r *domain.CompileRequest) { r.Target = domain.TargetDiskExecutable }},
		{"preserve main", func(r *domain.CompileRequest) {
			r.Edges = []domain.ImportEdge{{From: "/a", To: "/b", PreserveMain: true}}
		}},
		{"rename map", func(r *domain.CompileRequest) {
			r.Edges = []domain.ImportEdge{{From: "/a", To: "/b", RenameMap: map[string]string{"A": "B"}}}
		}},
		{"package", func(r *domain.CompileRequest) { r.Packages = []string{"yaml@v1.0.0"} }},
		{"missing placeholder", func(r *domain.CompileRequest) { r.Units[0].Missing = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := goldenRequest()
			tt.mutate(req)
			fp, err := h.Fingerprint(req)
			require.NoError(t, err)
			assert.NotEqual(t, base, fp)
		})
	}
}

func TestHasher_Fingerprint_ContentHashFallback(t *testing.T) {
	h := fs.NewHasher()
	withHash := goldenRequest()
	withHash.Units[0].Text = "package main\n"
	withHash.Units[0].ContentHash = h.HashContent([]byte("package main\n"))

	withoutHash := goldenRequest()
	withoutHash.Units[0].Text = "package main\n"
	withoutHash.Units[0].ContentHash = ""

	a, err := h.Fingerprint(withHash)
	require.NoError(t, err)
	b, err := h.Fingerprint(withoutHash)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHasher_Fingerprint_Empty(t *testing.T) {
	_, err := fs.NewHasher().Fingerprint(&domain.CompileRequest{})
	require.Error(t, err)
}
