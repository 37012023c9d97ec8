// Package config provides the configuration loader for stash.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the config file looked up in the working directory.
const DefaultFilename = "stash.yaml"

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// NewLoader creates a loader for the default filename.
func NewLoader() *FileConfigLoader {
	return &FileConfigLoader{Filename: DefaultFilename}
}

// Load reads the configuration from the given working directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.Config, error) {
	return Load(filepath.Join(cwd, l.Filename))
}

// Load reads a configuration file from the given path.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}

	var file Stashfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "path", path)
	}

	if file.MobileBaseURL == "" {
		return nil, zerr.With(zerr.With(domain.ErrConfigParseFailed, "path", path), "missing", "mobileBaseURL")
	}

	cfg := &domain.Config{
		MobileBaseURL:       file.MobileBaseURL,
		AdminBaseURL:        file.AdminBaseURL,
		ScreenCacheCapacity: file.Screens.Capacity,
		DataCacheCapacity:   file.Data.Capacity,
		ReadModelCapacity:   file.ReadModels.Capacity,
		ReadModelTTL:        time.Duration(file.ReadModels.TTLSeconds) * time.Second,
		Pagination: domain.PaginationConfig{
			LimitParam:  file.Data.LimitParam,
			OffsetParam: file.Data.OffsetParam,
			PageSize:    file.Data.PageSize,
		},
		PrefetchThreshold: file.Prefetch.Threshold,
	}

	// An explicit zero disables screen caching; absence means "use default".
	if file.Screens.DefaultTTLSeconds != nil {
		cfg.ScreenDefaultTTL = time.Duration(*file.Screens.DefaultTTLSeconds) * time.Second
		cfg.ScreenTTLSet = true
	}

	cfg.Normalize()
	return cfg, nil
}
