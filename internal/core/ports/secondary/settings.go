package secondary

import "context"

// SettingsRepository is a simple key/value store with an independent
// lifecycle; never cascaded
type SettingsRepository interface {
	// GetSetting returns the stored value, "" when the key is absent
	GetSetting(ctx context.Context, key string) (string, error)

	// SaveSetting inserts or overwrites a setting
	SaveSetting(ctx context.Context, key, value string) error
}
