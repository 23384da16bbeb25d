package domain

import (
	"fmt"
	"reflect"
	"slices"
)

// MemberDescriptor is one callable member of a loaded type.
// Several descriptors may share a Name; they are overloads of that member.
type MemberDescriptor struct {
	Name string
	// Func is the callable. For instance members the first parameter is the receiver.
	Func   reflect.Value
	Static bool
	Public bool
}

// Params returns the parameter types of the member, excluding the receiver.
func (m MemberDescriptor) Params() []reflect.Type {
	ft := m.Func.Type()
	start := 0
	if !m.Static {
		start = 1
	}
	params := make([]reflect.Type, 0, ft.NumIn()-start)
	for i := start; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	return params
}

// Signature renders the member as Name(T1, T2).
func (m MemberDescriptor) Signature() string {
	params := m.Params()
	s := m.Name + "("
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		if i == len(params)-1 && m.Func.Type().IsVariadic() {
			s += "..." + p.Elem().String()
			continue
		}
		s += p.String()
	}
	return s + ")"
}

// TypeDescriptor is the reflective view of one type exposed by a loaded module.
type TypeDescriptor struct {
	Name   string
	Public bool
	// Type is the Go type of instances. It is nil for static-only pseudo types such as a script package.
	Type reflect.Type
	// New creates an instance. It is nil when the type cannot be instantiated.
	New     func() (any, error)
	Members []MemberDescriptor
}

// Overloads returns every member named name.
func (t *TypeDescriptor) Overloads(name string) []MemberDescriptor {
	var out []MemberDescriptor
	for _, m := range t.Members {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}

// PublicMemberNames returns the distinct names of public members in declaration order.
func (t *TypeDescriptor) PublicMemberNames() []string {
	var names []string
	for _, m := range t.Members {
		if m.Public && !slices.Contains(names, m.Name) {
			names = append(names, m.Name)
		}
	}
	return names
}

// ScriptRuntimeError wraps a failure raised inside invoked script code.
// The original value is preserved: errors.Is and errors.As reach both ErrScriptRuntime and the script's own error.
type ScriptRuntimeError struct {
	// Member is the invoked member, as Type.Member.
	Member string
	// Value is the panic value or the error returned by the member.
	Value any
	// Origin is the file:line where the failure was raised, when known.
	Origin string
	// Stack is the goroutine stack captured at the panic site, when the failure was a panic.
	Stack string
}

func (e *ScriptRuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s: %v", ErrScriptRuntime.Error(), e.Member, e.Value)
	if e.Origin != "" {
		msg += " (at " + e.Origin + ")"
	}
	return msg
}

// Unwrap exposes the sentinel and, when Value is an error, the original error.
func (e *ScriptRuntimeError) Unwrap() []error {
	errs := []error{ErrScriptRuntime}
	if inner, ok := e.Value.(error); ok {
		errs = append(errs, inner)
	}
	return errs
}
