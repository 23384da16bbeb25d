package invoke

import (
	"reflect"
	"runtime/debug"
	"strings"
	"sync"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/zerr"
)

// Wildcard stands for the sole public type or member in scope.
const Wildcard = "*"

// scope restricts which overloads a call may select.
type scope int

const (
	scopeAny scope = iota
	scopeStatic
	scopeInstance
)

type invokerKey struct {
	typ    string
	member string
	scope  scope
	shape  string
}

// Facade resolves type and member specs against one load context. Specs are resolved
// once and cached; invokers are cached per (type, member, scope, argument shape).
type Facade struct {
	lc *LoadContext

	mu       sync.Mutex
	types    map[string]*domain.TypeDescriptor
	refs     map[string]MemberRef
	invokers map[invokerKey]*Invoker
}

// New creates a Facade over lc.
func New(lc *LoadContext) *Facade {
	return &Facade{
		lc:       lc,
		types:    make(map[string]*domain.TypeDescriptor),
		refs:     make(map[string]MemberRef),
		invokers: make(map[invokerKey]*Invoker),
	}
}

// Context returns the load context the facade works on.
func (f *Facade) Context() *LoadContext {
	return f.lc
}

// CreateInstance creates an object of the type named by typeSpec. The wildcard selects
// the sole public type that can be instantiated.
func (f *Facade) CreateInstance(typeSpec string) (inst *Instance, err error) {
	module, err := f.lc.Module()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	t, ok := f.types[typeSpec]
	if !ok {
		t, err = resolveType(module, typeSpec, func(t *domain.TypeDescriptor) bool { return t.New != nil })
		if err == nil {
			f.types[typeSpec] = t
		}
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if t.New == nil {
		return nil, zerr.With(domain.Detail(domain.ErrMemberNotFound, "type cannot be instantiated"), "type", t.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			err = &domain.ScriptRuntimeError{Member: t.Name + ".new", Value: r, Origin: origin(), Stack: string(debug.Stack())}
		}
	}()
	obj, err := t.New()
	if err != nil {
		return nil, &domain.ScriptRuntimeError{Member: t.Name + ".new", Value: err}
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return &Instance{Type: t, value: v, lc: f.lc, gen: f.lc.Generation()}, nil
}

// Resolve resolves memberSpec, written as Member, Type.Member or with Wildcard in
// either position. A bare member is looked up across all types and must be unique.
func (f *Facade) Resolve(memberSpec string) (MemberRef, error) {
	return f.resolve(nil, memberSpec)
}

// Invoke calls memberSpec with args. When instance is set, a bare member name is looked up
// in the instance's type and instance members are preferred; otherwise only static members
// are eligible.
func (f *Facade) Invoke(instance *Instance, memberSpec string, args ...any) (any, error) {
	var (
		within *domain.TypeDescriptor
		sc     = scopeStatic
	)
	if instance != nil {
		sc = scopeInstance
		if !strings.Contains(memberSpec, ".") {
			within = instance.Type
		}
	}

	ref, err := f.resolve(within, memberSpec)
	if err != nil {
		return nil, err
	}
	inv, err := f.invoker(ref, shapeOf(args), sc)
	if err != nil {
		return nil, err
	}
	return inv.Call(instance, args...)
}

// GetInvoker resolves memberSpec and selects the overload for shape. A nil entry in shape
// stands for an untyped nil argument.
func (f *Facade) GetInvoker(memberSpec string, shape ...reflect.Type) (*Invoker, error) {
	ref, err := f.Resolve(memberSpec)
	if err != nil {
		return nil, err
	}
	return f.invoker(ref, shape, scopeAny)
}

// Invoker selects the overload of an already resolved member for shape.
func (f *Facade) Invoker(ref MemberRef, shape ...reflect.Type) (*Invoker, error) {
	return f.invoker(ref, shape, scopeAny)
}

// Entry returns the invoker of the module's entry point.
func (f *Facade) Entry() (*Invoker, error) {
	module, err := f.lc.Module()
	if err != nil {
		return nil, err
	}
	name := module.Entry()
	if name == "" {
		return nil, zerr.With(domain.Detail(domain.ErrNoEntryPoint, ""), "module", module.Name())
	}
	ref, err := f.Resolve(name)
	if err != nil {
		return nil, err
	}
	return f.invoker(ref, nil, scopeStatic)
}

func (f *Facade) resolve(within *domain.TypeDescriptor, spec string) (MemberRef, error) {
	module, err := f.lc.Module()
	if err != nil {
		return MemberRef{}, err
	}

	key := spec
	if within != nil {
		key = within.Name + "\x00" + spec
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if ref, ok := f.refs[key]; ok {
		return ref, nil
	}
	ref, err := resolveMember(module, within, spec)
	if err != nil {
		return MemberRef{}, err
	}
	ref.gen = f.lc.Generation()
	f.refs[key] = ref
	return ref, nil
}

func (f *Facade) invoker(ref MemberRef, shape []reflect.Type, sc scope) (*Invoker, error) {
	if err := f.lc.check(ref.gen); err != nil {
		return nil, err
	}

	key := invokerKey{member: ref.Name, scope: sc, shape: shapeString(shape)}
	if ref.Type != nil {
		key.typ = ref.Type.Name
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.invokers[key]; ok {
		return inv, nil
	}

	overloads, err := eligible(ref, sc)
	if err != nil {
		return nil, err
	}
	c, err := selectOverload(ref, overloads, shape)
	if err != nil {
		return nil, err
	}

	inv := &Invoker{ref: ref, member: c.member, spread: c.spread, lc: f.lc, gen: ref.gen}
	f.invokers[key] = inv
	return inv, nil
}

// eligible filters overloads by scope. Instance calls fall back to static members when
// the type has no instance overload of that name.
func eligible(ref MemberRef, sc scope) ([]domain.MemberDescriptor, error) {
	all := ref.Overloads()
	if sc == scopeAny {
		return all, nil
	}

	var static, instance []domain.MemberDescriptor
	for _, m := range all {
		if m.Static {
			static = append(static, m)
		} else {
			instance = append(instance, m)
		}
	}

	if sc == scopeInstance && len(instance) > 0 {
		return instance, nil
	}
	if sc == scopeStatic && len(static) == 0 && len(instance) > 0 {
		return nil, zerr.With(domain.Detail(domain.ErrInstanceRequired, ""), "member", ref.String())
	}
	return static, nil
}

func resolveType(module ports.Module, spec string, keep func(*domain.TypeDescriptor) bool) (*domain.TypeDescriptor, error) {
	types := module.Types()
	if spec == Wildcard {
		var public []*domain.TypeDescriptor
		for _, t := range types {
			if t.Public && (keep == nil || keep(t)) {
				public = append(public, t)
			}
		}
		switch len(public) {
		case 1:
			return public[0], nil
		case 0:
			return nil, zerr.With(domain.Detail(domain.ErrMemberNotFound, "no public type"), "module", module.Name())
		default:
			err := zerr.With(domain.Detail(domain.ErrAmbiguousMethod, "several public types match the wildcard"), "module", module.Name())
			return nil, zerr.With(err, "types", typeNames(public))
		}
	}

	for _, t := range types {
		if t.Name == spec {
			return t, nil
		}
	}
	err := zerr.With(domain.Detail(domain.ErrMemberNotFound, "no such type"), "type", spec)
	return nil, zerr.With(err, "module", module.Name())
}

func resolveMember(module ports.Module, within *domain.TypeDescriptor, spec string) (MemberRef, error) {
	scopeTypes := module.Types()
	scopeName := "module " + module.Name()
	if i := strings.LastIndex(spec, "."); i >= 0 {
		t, err := resolveType(module, spec[:i], nil)
		if err != nil {
			return MemberRef{}, err
		}
		within = t
		spec = spec[i+1:]
	}
	if within != nil {
		scopeTypes = []*domain.TypeDescriptor{within}
		scopeName = "type " + within.Name
	}

	if spec == Wildcard {
		var refs []MemberRef
		for _, t := range scopeTypes {
			for _, name := range t.PublicMemberNames() {
				refs = append(refs, MemberRef{Type: t, Name: name})
			}
		}
		switch len(refs) {
		case 1:
			return refs[0], nil
		case 0:
			return MemberRef{}, zerr.With(domain.Detail(domain.ErrMemberNotFound, "no public member"), "scope", scopeName)
		default:
			names := make([]string, len(refs))
			for i, r := range refs {
				names[i] = r.String()
			}
			err := zerr.With(domain.Detail(domain.ErrAmbiguousMethod, "several public members match the wildcard"), "scope", scopeName)
			return MemberRef{}, zerr.With(err, "members", strings.Join(names, ", "))
		}
	}

	var hits []*domain.TypeDescriptor
	for _, t := range scopeTypes {
		if len(t.Overloads(spec)) > 0 {
			hits = append(hits, t)
		}
	}
	switch len(hits) {
	case 1:
		return MemberRef{Type: hits[0], Name: spec}, nil
	case 0:
		err := zerr.With(domain.Detail(domain.ErrMemberNotFound, ""), "member", spec)
		return MemberRef{}, zerr.With(err, "scope", scopeName)
	default:
		err := zerr.With(domain.Detail(domain.ErrAmbiguousMethod, "member is declared by several types"), "member", spec)
		return MemberRef{}, zerr.With(err, "types", typeNames(hits))
	}
}

func typeNames(types []*domain.TypeDescriptor) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
