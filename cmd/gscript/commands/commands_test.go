package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/cmd/gscript/commands"
	"go.trai.ch/gscript/internal/adapters/config"
	"go.trai.ch/gscript/internal/app"
	"go.trai.ch/gscript/internal/build"
	"go.trai.ch/gscript/internal/core/domain"
)

type mockApp struct {
	configureFunc func(v *viper.Viper) error
	runFunc       func(ctx context.Context, script string, opts app.RunOptions) error
	invokeFunc    func(ctx context.Context, script, member string, opts app.RunOptions) (any, error)
	compileFunc   func(ctx context.Context, script string, opts app.BuildOptions) (*domain.CompileResult, error)
	watchFunc     func(ctx context.Context, script string, opts app.WatchOptions) error
	members       []app.Member
	artifacts     []*domain.Artifact
	evicted       []string
	cleaned       bool
}

func (m *mockApp) Configure(v *viper.Viper) error {
	if m.configureFunc != nil {
		return m.configureFunc(v)
	}
	return nil
}

func (m *mockApp) Run(ctx context.Context, script string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, script, opts)
	}
	return nil
}

func (m *mockApp) Check(context.Context, string, app.BuildOptions) (domain.Diagnostics, error) {
	return nil, nil
}

func (m *mockApp) Compile(ctx context.Context, script string, opts app.BuildOptions) (*domain.CompileResult, error) {
	if m.compileFunc != nil {
		return m.compileFunc(ctx, script, opts)
	}
	return &domain.CompileResult{Success: true, Artifact: &domain.Artifact{}}, nil
}

func (m *mockApp) Invoke(ctx context.Context, script, member string, opts app.RunOptions) (any, error) {
	if m.invokeFunc != nil {
		return m.invokeFunc(ctx, script, member, opts)
	}
	return nil, nil
}

func (m *mockApp) Members(context.Context, string, app.BuildOptions) ([]app.Member, error) {
	return m.members, nil
}

func (m *mockApp) Watch(ctx context.Context, script string, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, script, opts)
	}
	return nil
}

func (m *mockApp) CacheList(context.Context) ([]*domain.Artifact, error) {
	return m.artifacts, nil
}

func (m *mockApp) CacheEvict(_ context.Context, prefixes []string) ([]domain.Fingerprint, error) {
	m.evicted = prefixes
	out := make([]domain.Fingerprint, len(prefixes))
	for i, p := range prefixes {
		out[i] = domain.Fingerprint(p + "0000")
	}
	return out, nil
}

func (m *mockApp) CacheClean(context.Context) error {
	m.cleaned = true
	return nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags and script args", func(t *testing.T) {
		var (
			captured app.RunOptions
			script   string
		)
		mock := &mockApp{
			runFunc: func(_ context.Context, s string, opts app.RunOptions) error {
				script = s
				captured = opts
				return nil
			},
		}

		_, err := execute(t, mock, "run", "-b", "go", "--fresh", "-I", "lib", "-t", "disk-executable", "main.cs", "--verbose", "x")
		require.NoError(t, err)
		assert.Equal(t, "main.cs", script)
		assert.Equal(t, "go", captured.Backend)
		assert.True(t, captured.Fresh)
		assert.Equal(t, []string{"lib"}, captured.SearchDirs)
		assert.Equal(t, domain.TargetDiskExecutable, captured.Target)
		assert.Equal(t, []string{"--verbose", "x"}, captured.Args)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(context.Context, string, app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "run", "main.cs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects unknown targets", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(context.Context, string, app.RunOptions) error {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, "run", "-t", "wasm", "main.cs")
		assert.ErrorIs(t, err, domain.ErrTargetNotSupported)
	})

	t.Run("requires a script", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "run")
		require.Error(t, err)
	})
}

func TestCommands_ConfigOverlay(t *testing.T) {
	var v *viper.Viper
	mock := &mockApp{
		configureFunc: func(got *viper.Viper) error {
			v = got
			return nil
		},
	}

	_, err := execute(t, mock, "--compile-timeout", "30s", "--no-cache", "run", "main.cs")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.True(t, v.IsSet(config.KeyExternalTimeout))
	assert.Equal(t, 30*time.Second, v.GetDuration(config.KeyExternalTimeout))
	assert.True(t, v.GetBool(config.KeyCacheDisabled))
	assert.False(t, v.IsSet(config.KeyCacheDir))
}

func TestCommands_Invoke(t *testing.T) {
	var (
		member string
		args   []string
	)
	mock := &mockApp{
		invokeFunc: func(_ context.Context, _, m string, opts app.RunOptions) (any, error) {
			member = m
			args = opts.Args
			return []any{1, "one"}, nil
		},
	}

	out, err := execute(t, mock, "invoke", "main.cs", "Tool.Run", "a", "-b")
	require.NoError(t, err)
	assert.Equal(t, "Tool.Run", member)
	assert.Equal(t, []string{"a", "-b"}, args)
	assert.Equal(t, "1 one\n", out)
}

func TestCommands_Members(t *testing.T) {
	mock := &mockApp{members: []app.Member{
		{Type: "script", Name: "Greet", Signature: "Greet(string)", Static: true},
		{Type: "Counter", Name: "Add", Signature: "Add(int)"},
	}}

	out, err := execute(t, mock, "members", "main.cs")
	require.NoError(t, err)
	assert.Contains(t, out, "Greet(string)")
	assert.Contains(t, out, "static")
	assert.Contains(t, out, "instance")
}

func TestCommands_Compile(t *testing.T) {
	mock := &mockApp{
		compileFunc: func(context.Context, string, app.BuildOptions) (*domain.CompileResult, error) {
			return &domain.CompileResult{
				Success: true,
				Cached:  true,
				Artifact: &domain.Artifact{
					Fingerprint: "abc123",
					Backend:     "yaegi",
					Target:      domain.TargetMemoryLibrary,
				},
			}, nil
		},
	}

	out, err := execute(t, mock, "compile", "main.cs")
	require.NoError(t, err)
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "memory (yaegi, cached)")
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, _ string, opts app.WatchOptions) error {
			captured = opts
			return nil
		},
	}

	_, err := execute(t, mock, "watch", "--check", "main.cs")
	require.NoError(t, err)
	assert.True(t, captured.CheckOnly)
}

func TestCommands_Cache(t *testing.T) {
	mock := &mockApp{}

	out, err := execute(t, mock, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cache is empty")

	mock.artifacts = []*domain.Artifact{{
		Fingerprint: "deadbeef",
		Backend:     "go",
		Target:      domain.TargetDiskExecutable,
		Path:        "/cache/artifacts/deadbeef/script",
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	out, err = execute(t, mock, "cache", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "deadbeef")
	assert.Contains(t, out, "/cache/artifacts/deadbeef/script")

	out, err = execute(t, mock, "cache", "evict", "dead")
	require.NoError(t, err)
	assert.Equal(t, []string{"dead"}, mock.evicted)
	assert.Contains(t, out, "evicted dead0000")

	_, err = execute(t, mock, "cache", "clean")
	require.NoError(t, err)
	assert.True(t, mock.cleaned)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
