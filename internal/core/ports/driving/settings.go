package driving

import "github.com/custodia-labs/sitechat/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults applied.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// Set updates a single setting by its config key (e.g. "chunking.size").
	Set(key, value string) error

	// Keys returns the recognised config keys in display order.
	Keys() []string
}
