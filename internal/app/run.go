package app

import (
	"context"
	"fmt"
	"slices"

	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/gscript/internal/core/ports"
	"go.trai.ch/gscript/internal/engine/invoke"
)

// RunOptions configures Run and Invoke.
type RunOptions struct {
	BuildOptions
	// Args follow the script's own args directive.
	Args []string
}

// Member describes one callable member of a loaded script.
type Member struct {
	Type      string
	Name      string
	Signature string
	Static    bool
}

// Run compiles script and runs its entry point. Executables run as child processes;
// libraries are loaded into the process and their entry member is invoked.
func (a *App) Run(ctx context.Context, script string, opts RunOptions) error {
	ctx, span := a.tracer.Start(ctx, "app.run", ports.WithAttribute("script", script))
	defer span.End()

	_, res, err := a.build(ctx, script, opts.BuildOptions)
	if err != nil {
		span.RecordError(err)
		return err
	}
	art := res.Artifact
	args := slices.Concat(art.Args, opts.Args)

	if art.Target == domain.TargetDiskExecutable {
		err := a.runner.Run(ctx, art.Path, args, a.stdio)
		if err != nil {
			span.RecordError(err)
		}
		return err
	}

	facade, err := a.load(ctx, art, args)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer a.unload(facade)

	entry, err := facade.Entry()
	if err != nil {
		return err
	}
	if _, err := entry.Call(nil); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Invoke compiles and loads script, then calls member with args. Instance members are
// called on a fresh instance of their type.
func (a *App) Invoke(ctx context.Context, script, member string, opts RunOptions) (any, error) {
	ctx, span := a.tracer.Start(ctx, "app.invoke",
		ports.WithAttribute("script", script),
		ports.WithAttribute("member", member),
	)
	defer span.End()

	opts.BuildOptions = loadable(opts.BuildOptions)
	_, res, err := a.build(ctx, script, opts.BuildOptions)
	if err != nil {
		return nil, err
	}
	facade, err := a.load(ctx, res.Artifact, res.Artifact.Args)
	if err != nil {
		return nil, err
	}
	defer a.unload(facade)

	args := make([]any, len(opts.Args))
	for i, arg := range opts.Args {
		args[i] = arg
	}

	ref, err := facade.Resolve(member)
	if err != nil {
		return nil, err
	}
	var instance *invoke.Instance
	if !hasStatic(ref.Overloads()) {
		if instance, err = facade.CreateInstance(ref.Type.Name); err != nil {
			return nil, err
		}
	}

	out, err := facade.Invoke(instance, ref.String(), args...)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

// Members compiles and loads script and lists its public members.
func (a *App) Members(ctx context.Context, script string, opts BuildOptions) ([]Member, error) {
	_, res, err := a.build(ctx, script, loadable(opts))
	if err != nil {
		return nil, err
	}
	facade, err := a.load(ctx, res.Artifact, nil)
	if err != nil {
		return nil, err
	}
	defer a.unload(facade)

	module, err := facade.Context().Module()
	if err != nil {
		return nil, err
	}
	var members []Member
	for _, t := range module.Types() {
		if !t.Public {
			continue
		}
		for _, m := range t.Members {
			if !m.Public {
				continue
			}
			members = append(members, Member{
				Type:      t.Name,
				Name:      m.Name,
				Signature: m.Signature(),
				Static:    m.Static,
			})
		}
	}
	return members, nil
}

func (a *App) load(ctx context.Context, art *domain.Artifact, args []string) (*invoke.Facade, error) {
	ctx, span := a.tracer.Start(ctx, "app.load",
		ports.WithAttribute("fingerprint", art.Fingerprint.String()),
		ports.WithAttribute("backend", art.Backend),
	)
	defer span.End()

	loader, err := a.registry.Loader(art)
	if err != nil {
		return nil, err
	}
	module, err := loader.Load(ctx, art, ports.LoadOptions{
		Args:   args,
		Stdin:  a.stdio.Stdin,
		Stdout: a.stdio.Stdout,
		Stderr: a.stdio.Stderr,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return invoke.New(invoke.NewLoadContext(module)), nil
}

func (a *App) unload(f *invoke.Facade) {
	if err := f.Context().Unload(); err != nil {
		a.logger.Warn(fmt.Sprintf("unloading script: %v", err))
	}
}

// loadable asks for a library target, mapping an executable request to the library kind
// that can be loaded.
func loadable(opts BuildOptions) BuildOptions {
	if opts.Target == domain.TargetDiskExecutable {
		opts.Target = domain.TargetDiskLibrary
	}
	opts.library = true
	return opts
}

func hasStatic(ms []domain.MemberDescriptor) bool {
	return slices.ContainsFunc(ms, func(m domain.MemberDescriptor) bool { return m.Static })
}

// FormatResult renders an invocation result for printing.
func FormatResult(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []any:
		s := ""
		for i, e := range x {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprint(e)
		}
		return s
	default:
		return fmt.Sprint(x)
	}
}
