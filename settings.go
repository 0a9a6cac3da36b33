package stationdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// ErrNoSetting is returned when a requested setting is not in the database.
var ErrNoSetting = errors.New("setting not present in database")

// Setting returns the value of a key from the settings table. Values are
// cached in memory; SetSetting keeps the cache coherent, so the cache is only
// stale if another process writes to the same file.
func (d *Database) Setting(key string) (string, error) {
	if value, ok := d.settings.Load(key); ok {
		return value, nil
	}

	var value string
	err := d.db.Get(&value, "SELECT value FROM settings WHERE setting = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNoSetting, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	d.settings.Store(key, value)
	return value, nil
}

// SettingInt returns a setting coerced to an integer.
func (d *Database) SettingInt(key string) (int, error) {
	value, err := d.Setting(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("setting %s is not an integer (%q): %w", key, value, err)
	}
	return n, nil
}

// SetSetting upserts a key in the settings table.
func (d *Database) SetSetting(key string, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (setting, value)
		VALUES ($1, $2)
		ON CONFLICT (setting)
		DO UPDATE SET value = $2`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	d.settings.Store(key, value)
	return nil
}
