package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/gscript/internal/app"
	"go.trai.ch/gscript/internal/core/domain"
	"go.trai.ch/zerr"
)

func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("backend", "b", "", "Compile with the named backend instead of the engine directive")
	f.StringP("target", "t", "", "Target kind: memory-library, disk-library or disk-executable")
	f.StringSliceP("search-dir", "I", nil, "Additional directory to probe for imports")
	f.Bool("lenient", false, "Assume the default extension for imports that match nothing")
	f.BoolP("fresh", "f", false, "Recompile even if a cached artifact is valid")
	f.String("root-type", "", "Name of the compiled root type")
}

func buildOptions(cmd *cobra.Command) (app.BuildOptions, error) {
	f := cmd.Flags()
	backend, _ := f.GetString("backend")
	target, _ := f.GetString("target")
	searchDirs, _ := f.GetStringSlice("search-dir")
	lenient, _ := f.GetBool("lenient")
	fresh, _ := f.GetBool("fresh")
	rootType, _ := f.GetString("root-type")

	kind := domain.TargetKind(target)
	if target != "" && !kind.IsValid() {
		return app.BuildOptions{}, zerr.With(domain.Detail(domain.ErrTargetNotSupported, target), "target", target)
	}

	return app.BuildOptions{
		Backend:      backend,
		Target:       kind,
		RootTypeName: rootType,
		SearchDirs:   searchDirs,
		Lenient:      lenient,
		Fresh:        fresh,
	}, nil
}
