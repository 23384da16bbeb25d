package yaegi

import (
	"reflect"
	"sync"

	"github.com/traefik/yaegi/interp"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/zerr"
)

var _ ports.Module = (*Module)(nil)

// Module is an evaluated script held by its own interpreter.
type Module struct {
	name    string
	entry   string
	types   []*domain.TypeDescriptor
	interp  *interp.Interpreter
	cleanup func()
	once    sync.Once
}

// Name implements ports.Module.
func (m *Module) Name() string {
	return m.name
}

// Types returns the script's static pseudo type first, followed by its exported types.
func (m *Module) Types() []*domain.TypeDescriptor {
	return m.types
}

// Entry implements ports.Module.
func (m *Module) Entry() string {
	return m.entry
}

// Close drops the interpreter and the linked package tree.
func (m *Module) Close() error {
	m.once.Do(func() {
		m.interp = nil
		m.cleanup()
	})
	return nil
}

// describe builds the reflective view of an evaluated unit. Top-level functions become
// static members of a pseudo type named after the module; the entry alias is kept private.
func describe(i *interp.Interpreter, module string, decls *compiler.Decls) ([]*domain.TypeDescriptor, error) {
	root := &domain.TypeDescriptor{Name: module, Public: true}
	for _, fn := range decls.Funcs {
		v, err := eval(i, fn)
		if err != nil {
			return nil, zerr.With(err, "member", module+"."+fn)
		}
		root.Members = append(root.Members, domain.MemberDescriptor{
			Name:   compiler.MemberName(fn),
			Func:   v,
			Static: true,
			Public: fn != compiler.EntryAlias,
		})
	}

	types := []*domain.TypeDescriptor{root}
	for _, name := range decls.Types {
		ptr, err := eval(i, "new("+name+")")
		if err != nil {
			return nil, zerr.With(err, "type", name)
		}
		typ := ptr.Type().Elem()
		td := &domain.TypeDescriptor{
			Name:   name,
			Public: true,
			Type:   typ,
			New: func() (any, error) {
				return reflect.New(typ).Interface(), nil
			},
		}
		for _, method := range decls.Methods[name] {
			expr := name + "." + method.Name
			if method.Pointer {
				expr = "(*" + name + ")." + method.Name
			}
			v, err := eval(i, expr)
			if err != nil {
				return nil, zerr.With(err, "member", name+"."+method.Name)
			}
			td.Members = append(td.Members, domain.MemberDescriptor{
				Name:   compiler.MemberName(method.Name),
				Func:   v,
				Public: true,
			})
		}
		types = append(types, td)
	}
	return types, nil
}

func eval(i *interp.Interpreter, expr string) (reflect.Value, error) {
	v, err := i.Eval(expr)
	if err != nil {
		return reflect.Value{}, domain.WrapKind(err, domain.ErrNotLoadable)
	}
	if !v.IsValid() {
		return reflect.Value{}, zerr.With(domain.Detail(domain.ErrNotLoadable, "declaration has no value"), "expr", expr)
	}
	return v, nil
}
