// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/gscript/internal/adapters/cas"
	_ "go.trai.ch/gscript/internal/adapters/config"
	_ "go.trai.ch/gscript/internal/adapters/fs"
	_ "go.trai.ch/gscript/internal/adapters/gotool"
	_ "go.trai.ch/gscript/internal/adapters/logger"
	_ "go.trai.ch/gscript/internal/adapters/pkgroot"
	_ "go.trai.ch/gscript/internal/adapters/shell"
	_ "go.trai.ch/gscript/internal/adapters/telemetry"
	_ "go.trai.ch/gscript/internal/adapters/watcher"
	_ "go.trai.ch/gscript/internal/adapters/yaegi"
	// Register app and engine nodes.
	_ "go.trai.ch/gscript/internal/app"
	_ "go.trai.ch/gscript/internal/engine/cache"
	_ "go.trai.ch/gscript/internal/engine/resolver"
)
