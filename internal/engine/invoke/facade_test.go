package invoke_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports/mocks"
	"go.trai.ch/gscript/internal/engine/invoke"
	"go.uber.org/mock/gomock"
)

var errUser = errors.New("user failure")

type counter struct{ n int }

func (c *counter) Inc() { c.n++ }
func (c counter) Get() int { return c.n }

type both struct{}

func (both) String() string { return "both" }
func (both) Error() string { return "both" }

func static(name string, fn any) domain.MemberDescriptor {
	return domain.MemberDescriptor{Name: name, Func: reflect.ValueOf(fn), Static: true, Public: true}
}

func method(name string, fn any) domain.MemberDescriptor {
	return domain.MemberDescriptor{Name: name, Func: reflect.ValueOf(fn), Public: true}
}

func scriptTypes() []*domain.TypeDescriptor {
	return []*domain.TypeDescriptor{
		{
			Name:   "Script",
			Public: true,
			Members: []domain.MemberDescriptor{
				static("Main", func() string { return "Main()" }),
				static("Main", func(string) string { return "Main(string)" }),
				static("Main", func([]string) string { return "Main([]string)" }),
				static("Main", func([]string, int) string { return "Main([]string, int)" }),
				static("Sum", func(a, b int) string { return "pair" }),
				static("Sum", func(xs ...int) int {
					total := 0
					for _, x := range xs {
						total += x
					}
					return total
				}),
				static("Describe", func(fmt.Stringer) string { return "stringer" }),
				static("Describe", func(error) string { return "error" }),
				static("Boom", func() { panic(errUser) }),
				static("Fail", func() (int, error) { return 0, errUser }),
				static("Pair", func() (int, string) { return 1, "one" }),
				{Name: "ScriptMain", Func: reflect.ValueOf(func() string { return "entry" }), Static: true},
			},
		},
		{
			Name:   "Counter",
			Public: true,
			Type:   reflect.TypeFor[counter](),
			New:    func() (any, error) { return &counter{}, nil },
			Members: []domain.MemberDescriptor{
				method("Inc", (*counter).Inc),
				method("Get", counter.Get),
			},
		},
		{
			Name:    "Other",
			Public:  true,
			Members: []domain.MemberDescriptor{static("Get", func() int { return -1 })},
		},
	}
}

func newFacade(t *testing.T, types []*domain.TypeDescriptor, entry string) (*invoke.Facade, *mocks.MockModule) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockModule(ctrl)
	m.EXPECT().Name().Return("Script").AnyTimes()
	m.EXPECT().Types().Return(types).AnyTimes()
	m.EXPECT().Entry().Return(entry).AnyTimes()
	return invoke.New(invoke.NewLoadContext(m)), m
}

func TestInvoke_MainOverloads(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	cases := []struct {
		args []any
		want string
	}{
		{nil, "Main()"},
		{[]any{"x"}, "Main(string)"},
		{[]any{[]string{"a", "b"}}, "Main([]string)"},
		{[]any{[]string{"a"}, 3}, "Main([]string, int)"},
		{[]any{nil}, "Main([]string)"},
	}
	for _, tc := range cases {
		for range 3 {
			got, err := f.Invoke(nil, "Main", tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		}
	}

	_, err := f.Invoke(nil, "Main", 42)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestInvoke_Variadic(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	got, err := f.Invoke(nil, "Script.Sum", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "pair", got)

	got, err = f.Invoke(nil, "Script.Sum", 1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	got, err = f.Invoke(nil, "Sum", []int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, 9, got)

	got, err = f.Invoke(nil, "Sum")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestInvoke_Ambiguous(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	_, err := f.Invoke(nil, "Describe", both{})
	assert.ErrorIs(t, err, domain.ErrAmbiguousMethod)

	got, err := f.Invoke(nil, "Describe", errUser)
	require.NoError(t, err)
	assert.Equal(t, "error", got)

	_, err = f.Resolve("Get")
	assert.ErrorIs(t, err, domain.ErrAmbiguousMethod)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	ref, err := f.Resolve("Counter.Inc")
	require.NoError(t, err)
	assert.Equal(t, "Counter.Inc", ref.String())
	assert.Len(t, ref.Overloads(), 1)

	ref, err = f.Resolve("Boom")
	require.NoError(t, err)
	assert.Equal(t, "Script.Boom", ref.String())

	_, err = f.Resolve("Nope")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	_, err = f.Resolve("Missing.Main")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	_, err = f.Resolve("*")
	assert.ErrorIs(t, err, domain.ErrAmbiguousMethod)

	ref, err = f.Resolve("Other.*")
	require.NoError(t, err)
	assert.Equal(t, "Other.Get", ref.String())
}

func TestResolve_Wildcards(t *testing.T) {
	t.Parallel()
	types := []*domain.TypeDescriptor{
		{Name: "Hidden", Members: []domain.MemberDescriptor{static("Run", func() {})}},
		{Name: "Tool", Public: true, Members: []domain.MemberDescriptor{
			static("Run", func() string { return "run" }),
			{Name: "helper", Func: reflect.ValueOf(func() {}), Static: true},
		}},
	}
	f, _ := newFacade(t, types, "")

	ref, err := f.Resolve("*.*")
	require.NoError(t, err)
	assert.Equal(t, "Tool.Run", ref.String())

	got, err := f.Invoke(nil, "*.Run")
	require.NoError(t, err)
	assert.Equal(t, "run", got)

	_, err = f.CreateInstance("*")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestInstanceMembers(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	inst, err := f.CreateInstance("*")
	require.NoError(t, err)
	assert.Equal(t, "Counter", inst.Type.Name)

	for range 2 {
		_, err = f.Invoke(inst, "Inc")
		require.NoError(t, err)
	}
	got, err := f.Invoke(inst, "Get")
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	v, err := inst.Value()
	require.NoError(t, err)
	assert.Equal(t, &counter{n: 2}, v)

	_, err = f.Invoke(nil, "Counter.Inc")
	assert.ErrorIs(t, err, domain.ErrInstanceRequired)

	got, err = f.Invoke(inst, "Other.Get")
	require.NoError(t, err)
	assert.Equal(t, -1, got)

	_, err = f.CreateInstance("Other")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestInvoke_RuntimeErrors(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	_, err := f.Invoke(nil, "Boom")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScriptRuntime)
	assert.ErrorIs(t, err, errUser)

	var rt *domain.ScriptRuntimeError
	require.ErrorAs(t, err, &rt)
	assert.Equal(t, "Script.Boom", rt.Member)
	assert.Contains(t, rt.Origin, "facade_test.go")
	assert.NotEmpty(t, rt.Stack)

	_, err = f.Invoke(nil, "Fail")
	assert.ErrorIs(t, err, domain.ErrScriptRuntime)
	assert.ErrorIs(t, err, errUser)

	got, err := f.Invoke(nil, "Pair")
	require.NoError(t, err)
	assert.Equal(t, []any{1, "one"}, got)
}

func TestGetInvoker_Cached(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "")

	str := reflect.TypeFor[string]()
	a, err := f.GetInvoker("Main", str)
	require.NoError(t, err)
	b, err := f.GetInvoker("Main", str)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "Main(string)", a.Member().Signature())

	got, err := a.Call(nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "Main(string)", got)

	_, err = a.Call(nil, 1)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	nilInv, err := f.GetInvoker("Main", nil)
	require.NoError(t, err)
	assert.Equal(t, "Main([]string)", nilInv.Member().Signature())

	ref, err := f.Resolve("Sum")
	require.NoError(t, err)
	inv, err := f.Invoker(ref, reflect.TypeFor[int](), reflect.TypeFor[int](), reflect.TypeFor[int]())
	require.NoError(t, err)
	got, err = inv.Call(nil, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestUnload(t *testing.T) {
	t.Parallel()
	f, m := newFacade(t, scriptTypes(), "")
	m.EXPECT().Close().Return(nil).Times(1)

	inv, err := f.GetInvoker("Main")
	require.NoError(t, err)
	inst, err := f.CreateInstance("Counter")
	require.NoError(t, err)

	require.NoError(t, f.Context().Unload())
	require.NoError(t, f.Context().Unload())
	assert.True(t, f.Context().Unloaded())

	_, err = inv.Call(nil)
	assert.ErrorIs(t, err, domain.ErrContextUnloaded)

	_, err = inst.Value()
	assert.ErrorIs(t, err, domain.ErrContextUnloaded)

	_, err = f.Invoke(nil, "Main")
	assert.ErrorIs(t, err, domain.ErrContextUnloaded)

	_, err = f.CreateInstance("Counter")
	assert.ErrorIs(t, err, domain.ErrContextUnloaded)
}

func TestEntry(t *testing.T) {
	t.Parallel()
	f, _ := newFacade(t, scriptTypes(), "ScriptMain")

	inv, err := f.Entry()
	require.NoError(t, err)
	got, err := inv.Call(nil)
	require.NoError(t, err)
	assert.Equal(t, "entry", got)

	g, _ := newFacade(t, scriptTypes(), "")
	_, err = g.Entry()
	assert.ErrorIs(t, err, domain.ErrNoEntryPoint)
}
