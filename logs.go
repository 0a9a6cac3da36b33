package stationdb

import (
	"fmt"
	"time"
)

// Log severity levels as stored in the logs table.
const (
	LevelDebug    = "debug"
	LevelInfo     = "info"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
)

// LogEntry is one row of the logs table. The timestamp column is declared as
// a date, so the sqlite3 driver hands it back as time.Time.
type LogEntry struct {
	ID        int       `db:"id"`
	Timestamp time.Time `db:"timestamp"`
	Level     string    `db:"level"`
	Source    string    `db:"source"`
	Message   string    `db:"log"`
}

// logTimestampLayout matches the STRFTIME default of the timestamp column.
const logTimestampLayout = "2006-01-02 15:04:05.000"

// AddLog appends an entry to the logs table. An empty source defaults to
// "none", an empty level to info.
func (d *Database) AddLog(message string, source string, level string) error {
	if source == "" {
		source = "none"
	}
	if level == "" {
		level = LevelInfo
	}
	_, err := d.db.Exec(
		"INSERT INTO logs (level, source, log) VALUES ($1, $2, $3)",
		level, source, message)
	if err != nil {
		return fmt.Errorf("failed to add log entry: %w", err)
	}
	return nil
}

// RecentLogs returns the most recent log entries, newest first.
func (d *Database) RecentLogs(limit int) ([]LogEntry, error) {
	var entries []LogEntry
	err := d.db.Select(&entries,
		"SELECT id, timestamp, level, source, log FROM logs ORDER BY id DESC LIMIT $1",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent logs: %w", err)
	}
	return entries, nil
}

// LogsBySource returns the most recent entries from one source, newest first.
func (d *Database) LogsBySource(source string, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	err := d.db.Select(&entries,
		"SELECT id, timestamp, level, source, log FROM logs WHERE source = $1 ORDER BY id DESC LIMIT $2",
		source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for source %s: %w", source, err)
	}
	return entries, nil
}

// DeleteOldLogs removes entries older than the given duration and returns how
// many were deleted. Timestamps are stored as UTC strings, so a string
// comparison against the threshold is sufficient.
func (d *Database) DeleteOldLogs(olderThan time.Duration) (int64, error) {
	threshold := time.Now().UTC().Add(-olderThan).Format(logTimestampLayout)
	result, err := d.db.Exec("DELETE FROM logs WHERE timestamp < $1", threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old logs: %w", err)
	}
	return result.RowsAffected()
}
