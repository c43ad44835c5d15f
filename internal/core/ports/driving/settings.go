package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// SettingsService reads and writes the persisted configuration.
type SettingsService interface {
	// Get returns the stored settings with environment overrides on top.
	Get() (*domain.AppSettings, error)

	// Save writes every field of settings.
	Save(settings *domain.AppSettings) error

	// Set parses value for one dotted key such as "chunking.size" and
	// stores it.
	Set(key, value string) error

	// GetDefaults returns the built-in settings.
	GetDefaults() domain.AppSettings
}
