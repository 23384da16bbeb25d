package ports

import "go.trai.ch/gscript/internal/core/domain"

// ConfigLoader defines the interface for loading configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration file by walking up from cwd and returns the merged config.
	// A missing file yields the defaults.
	Load(cwd string) (*domain.Config, error)
}
