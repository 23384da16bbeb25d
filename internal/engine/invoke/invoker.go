package invoke

import (
	"reflect"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

var errorType = reflect.TypeFor[error]()

// MemberRef is a resolved member name within one type. Callers keep it and pass it back
// instead of relying on the facade remembering the last resolved type.
type MemberRef struct {
	Type *domain.TypeDescriptor
	Name string
	gen  uint64
}

// String returns Type.Member.
func (r MemberRef) String() string {
	if r.Type == nil {
		return r.Name
	}
	return r.Type.Name + "." + r.Name
}

// Overloads returns every member sharing the reference's name.
func (r MemberRef) Overloads() []domain.MemberDescriptor {
	if r.Type == nil {
		return nil
	}
	return r.Type.Overloads(r.Name)
}

// Instance is an object created from a loaded type.
type Instance struct {
	Type  *domain.TypeDescriptor
	value reflect.Value
	lc    *LoadContext
	gen   uint64
}

// Value returns the instance as a pointer to the underlying object.
func (i *Instance) Value() (any, error) {
	if err := i.lc.check(i.gen); err != nil {
		return nil, err
	}
	return i.value.Interface(), nil
}

// Invoker calls one overload selected for a fixed argument shape.
type Invoker struct {
	ref    MemberRef
	member domain.MemberDescriptor
	// spread packs trailing arguments into the variadic parameter.
	spread bool
	lc     *LoadContext
	gen    uint64
}

// Member returns the selected overload.
func (inv *Invoker) Member() domain.MemberDescriptor {
	return inv.member
}

// Call invokes the member. instance is ignored for static members. A panic or a non-nil
// trailing error result is returned as *domain.ScriptRuntimeError. A single remaining
// result is returned as is; several are returned as []any.
func (inv *Invoker) Call(instance *Instance, args ...any) (any, error) {
	if err := inv.lc.check(inv.gen); err != nil {
		return nil, err
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if !inv.member.Static {
		recv, err := inv.receiver(instance)
		if err != nil {
			return nil, err
		}
		in = append(in, recv)
	}

	params := inv.member.Params()
	if (!inv.spread && len(args) != len(params)) || (inv.spread && len(args) < len(params)-1) {
		return nil, inv.mismatch(args)
	}
	for i, a := range args {
		p := inv.param(params, i)
		if p == nil {
			return nil, inv.mismatch(args)
		}
		if _, ok := argCost(p, reflect.TypeOf(a)); !ok {
			return nil, inv.mismatch(args)
		}
		if a == nil {
			in = append(in, reflect.Zero(p))
			continue
		}
		in = append(in, reflect.ValueOf(a))
	}
	return inv.call(in)
}

func (inv *Invoker) param(params []reflect.Type, i int) reflect.Type {
	last := len(params) - 1
	if inv.spread && i >= last {
		return params[last].Elem()
	}
	if i > last {
		return nil
	}
	return params[i]
}

func (inv *Invoker) receiver(instance *Instance) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, zerr.With(domain.Detail(domain.ErrInstanceRequired, ""), "member", inv.ref.String())
	}
	if err := instance.lc.check(instance.gen); err != nil {
		return reflect.Value{}, err
	}

	want := inv.member.Func.Type().In(0)
	v := instance.value
	switch {
	case v.Type() == want:
		return v, nil
	case v.Kind() == reflect.Pointer && v.Type().Elem() == want:
		return v.Elem(), nil
	case v.Type().AssignableTo(want):
		return v, nil
	}
	err := zerr.With(domain.Detail(domain.ErrInstanceRequired, "instance has the wrong type"), "member", inv.ref.String())
	return reflect.Value{}, zerr.With(err, "instance", instance.Type.Name)
}

func (inv *Invoker) call(in []reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.ScriptRuntimeError{
				Member: inv.ref.String(),
				Value:  r,
				Origin: origin(),
				Stack:  string(debug.Stack()),
			}
		}
	}()

	var out []reflect.Value
	if inv.member.Func.Type().IsVariadic() && !inv.spread {
		out = inv.member.Func.CallSlice(in)
	} else {
		out = inv.member.Func.Call(in)
	}

	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if e := out[n-1]; !e.IsNil() {
			return nil, &domain.ScriptRuntimeError{Member: inv.ref.String(), Value: e.Interface()}
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, nil
	}
}

func (inv *Invoker) mismatch(args []any) error {
	err := zerr.With(domain.Detail(domain.ErrMemberNotFound, "arguments do not match the invoker"), "member", inv.member.Signature())
	return zerr.With(err, "arguments", shapeString(shapeOf(args)))
}

// origin returns file:line of the frame that raised the current panic, skipping runtime,
// reflection and interpreter frames. It must be called from a deferred function.
func origin() string {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	panicking := false
	for {
		f, more := frames.Next()
		switch {
		case f.Function == "runtime.gopanic":
			panicking = true
		case panicking && !internalFrame(f.Function):
			return f.File + ":" + strconv.Itoa(f.Line)
		}
		if !more {
			return ""
		}
	}
}

func internalFrame(fn string) bool {
	for _, prefix := range []string{"runtime.", "reflect.", "github.com/traefik/yaegi/"} {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}
