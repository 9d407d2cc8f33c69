package driven

import "github.com/prescribewise/prescribewise-cli/internal/core/domain"

// ConfigStore persists application settings.
//
// API keys are supplied through the environment and are never written by
// implementations of this interface.
type ConfigStore interface {
	// Load reads settings from storage, applying defaults for missing
	// values. A missing file yields defaults, not an error.
	Load() (domain.AppSettings, error)

	// Save writes settings to storage.
	Save(settings domain.AppSettings) error

	// Path returns the backing file location for display.
	Path() string
}
