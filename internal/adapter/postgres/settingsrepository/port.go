// package settingsrepository contains the PostgreSQL implementation of the
// key/value settings store.
package settingsrepository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/prompteval-2025.net/internal/core/ports/primary"
	"gitlab.com/prompteval-2025.net/internal/core/ports/secondary"
)

// SettingsRepository implements the SettingsRepository interface with PostgreSQL
type SettingsRepository struct {
	db     *sqlx.DB
	logger primary.Logger
}

var _ secondary.SettingsRepository = (*SettingsRepository)(nil)

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(db *sqlx.DB, logger primary.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
	}
}

// GetSetting returns the stored value for a key, "" when absent
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		r.logger.Error("Failed to get setting", "key", key, "error", err)
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	return value, nil
}

// SaveSetting inserts or overwrites a setting
func (r *SettingsRepository) SaveSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		r.logger.Error("Failed to save setting", "key", key, "error", err)
		return fmt.Errorf("failed to save setting: %w", err)
	}

	return nil
}
