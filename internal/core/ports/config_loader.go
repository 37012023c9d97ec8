package ports

import "go.trai.ch/stash/internal/core/domain"

// ConfigLoader defines the interface for loading the caching-layer
// configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration from the given working directory and
	// returns it with defaults applied.
	Load(cwd string) (*domain.Config, error)
}
