// Package bundle reads sync-bundle files from disk. A bundle is the JSON
// batch payload the backend serves to pre-populate many screen definitions
// in one round-trip; the file form lets the CLI seed without a network.
package bundle

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/zerr"
)

// File is the on-disk shape of a sync bundle.
type File struct {
	Version string                         `json:"version"`
	Screens map[string]domain.BundleScreen `json:"screens"`
}

// Load reads a sync-bundle file and returns its screens keyed by screen key.
func Load(path string) (map[string]domain.BundleScreen, error) {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, zerr.With(errors.Join(domain.ErrBundleReadFailed, err), "path", path)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(errors.Join(domain.ErrBundleParseFailed, err), "path", path)
	}

	// Per-screen version fields default to the bundle's own version.
	for key, screen := range file.Screens {
		if screen.Version == "" {
			screen.Version = file.Version
			file.Screens[key] = screen
		}
	}
	return file.Screens, nil
}
