package stationdb

import (
	"fmt"
	"strings"
)

// ProtocolStep is one entry of the measurement protocol: which instrument to
// point where, how many scans to take and how long to wait afterwards.
// Zenith 180 is straight up, 90 horizontal. Azimuth is relative to the sun.
type ProtocolStep struct {
	ID         int    `db:"-"`
	Instrument string `db:"instrument"`
	Zenith     int    `db:"zenith"`
	Azimuth    int    `db:"azimuth"`
	Repeat     int    `db:"repeat"`
	Wait       int    `db:"wait"`
}

// Protocol returns the measurement sequence in execution order. Step ids are
// renumbered from 1 regardless of the stored row ids, and instrument codes
// are normalized to lower case.
func (d *Database) Protocol() ([]ProtocolStep, error) {
	var steps []ProtocolStep
	err := d.db.Select(&steps,
		`SELECT instrument, zenith, azimuth, repeat, wait FROM protocol ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}
	for i := range steps {
		steps[i].ID = i + 1
		steps[i].Instrument = strings.ToLower(steps[i].Instrument)
	}
	return steps, nil
}

// ReplaceProtocol swaps the stored measurement sequence for a new one in a
// single transaction.
func (d *Database) ReplaceProtocol(steps []ProtocolStep) error {
	for i, step := range steps {
		if step.Instrument == "" {
			return fmt.Errorf("protocol step %d has no instrument", i+1)
		}
	}

	tx, err := d.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM protocol"); err != nil {
		return fmt.Errorf("failed to clear protocol: %w", err)
	}
	for i, step := range steps {
		_, err := tx.Exec(
			"INSERT INTO protocol (number, instrument, zenith, azimuth, repeat, wait) VALUES ($1, $2, $3, $4, $5, $6)",
			i+1, strings.ToLower(step.Instrument), step.Zenith, step.Azimuth, step.Repeat, step.Wait)
		if err != nil {
			return fmt.Errorf("failed to insert protocol step %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}
