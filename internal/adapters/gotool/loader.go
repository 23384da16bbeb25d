package gotool

import (
	"context"
	"plugin"
	"reflect"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/compiler"
	"go.trai.ch/zerr"
)

// Load opens a disk library as a Go plugin. Its exported functions become static members
// of one pseudo type. Plugins share the host's standard streams, so opts is not used, and
// they cannot be unloaded.
func (b *Backend) Load(_ context.Context, art *domain.Artifact, _ ports.LoadOptions) (ports.Module, error) {
	if art.Target != domain.TargetDiskLibrary || art.Path == "" {
		return nil, zerr.With(domain.Detail(domain.ErrNotLoadable, "only disk libraries can be loaded"),
			"target", string(art.Target))
	}

	p, err := plugin.Open(art.Path)
	if err != nil {
		return nil, zerr.With(domain.WrapKind(err, domain.ErrNotLoadable), "path", art.Path)
	}

	root := &domain.TypeDescriptor{Name: art.Module, Public: true}
	for _, name := range art.Exports {
		sym, err := p.Lookup(name)
		if err != nil {
			return nil, zerr.With(domain.WrapKind(err, domain.ErrNotLoadable), "member", name)
		}
		v := reflect.ValueOf(sym)
		if v.Kind() != reflect.Func {
			continue
		}
		root.Members = append(root.Members, domain.MemberDescriptor{
			Name:   compiler.MemberName(name),
			Func:   v,
			Static: true,
			Public: name != compiler.EntryAlias,
		})
	}

	return &library{name: art.Module, entry: art.Entry, types: []*domain.TypeDescriptor{root}}, nil
}

type library struct {
	name  string
	entry string
	types []*domain.TypeDescriptor
}

func (l *library) Name() string {
	return l.name
}

func (l *library) Types() []*domain.TypeDescriptor {
	return l.types
}

func (l *library) Entry() string {
	return l.entry
}

func (l *library) Close() error {
	return nil
}
