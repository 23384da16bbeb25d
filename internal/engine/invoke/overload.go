package invoke

import (
	"reflect"
	"strings"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

// Match costs. Lower is better; equal totals between candidates are ambiguous.
const (
	costExact      = 0
	costAssignable = 1
	// costSpread is charged once for packing arguments into a variadic parameter and
	// again for every packed argument.
	costSpread = 2
)

type candidate struct {
	member domain.MemberDescriptor
	cost   int
	spread bool
}

// selectOverload picks the cheapest overload accepting shape. A nil entry in shape stands
// for an untyped nil argument.
func selectOverload(ref MemberRef, overloads []domain.MemberDescriptor, shape []reflect.Type) (candidate, error) {
	var best []candidate
	for _, m := range overloads {
		c, ok := match(m, shape)
		if !ok {
			continue
		}
		switch {
		case len(best) == 0 || c.cost < best[0].cost:
			best = []candidate{c}
		case c.cost == best[0].cost:
			best = append(best, c)
		}
	}

	switch len(best) {
	case 0:
		err := zerr.With(domain.Detail(domain.ErrMemberNotFound, "no overload accepts the arguments"), "member", ref.String())
		err = zerr.With(err, "arguments", shapeString(shape))
		return candidate{}, zerr.With(err, "overloads", signatures(overloads))
	case 1:
		return best[0], nil
	default:
		ms := make([]domain.MemberDescriptor, len(best))
		for i, c := range best {
			ms[i] = c.member
		}
		err := zerr.With(domain.Detail(domain.ErrAmbiguousMethod, ""), "member", ref.String())
		err = zerr.With(err, "arguments", shapeString(shape))
		return candidate{}, zerr.With(err, "candidates", signatures(ms))
	}
}

func match(m domain.MemberDescriptor, shape []reflect.Type) (candidate, bool) {
	params := m.Params()
	if len(shape) == len(params) {
		if cost, ok := argsCost(params, shape); ok {
			return candidate{member: m, cost: cost}, true
		}
	}
	if !m.Func.Type().IsVariadic() {
		return candidate{}, false
	}

	fixed := len(params) - 1
	if len(shape) < fixed {
		return candidate{}, false
	}
	cost, ok := argsCost(params[:fixed], shape[:fixed])
	if !ok {
		return candidate{}, false
	}
	cost += costSpread
	elem := params[fixed].Elem()
	for _, arg := range shape[fixed:] {
		c, ok := argCost(elem, arg)
		if !ok {
			return candidate{}, false
		}
		cost += c + costSpread
	}
	return candidate{member: m, cost: cost, spread: true}, true
}

func argsCost(params, shape []reflect.Type) (int, bool) {
	total := 0
	for i, p := range params {
		c, ok := argCost(p, shape[i])
		if !ok {
			return 0, false
		}
		total += c
	}
	return total, true
}

func argCost(param, arg reflect.Type) (int, bool) {
	switch {
	case arg == nil:
		return costAssignable, nillable(param)
	case arg == param:
		return costExact, true
	case arg.AssignableTo(param):
		return costAssignable, true
	default:
		return 0, false
	}
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func shapeOf(args []any) []reflect.Type {
	shape := make([]reflect.Type, len(args))
	for i, a := range args {
		shape[i] = reflect.TypeOf(a)
	}
	return shape
}

func shapeString(shape []reflect.Type) string {
	parts := make([]string, len(shape))
	for i, t := range shape {
		if t == nil {
			parts[i] = "nil"
			continue
		}
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func signatures(ms []domain.MemberDescriptor) string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Signature()
	}
	return strings.Join(out, "; ")
}
