package stationdb

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Table names as used by LastID, Export and Create.
const (
	TableSettings     = "settings"
	TableQueue        = "queue"
	TableLogs         = "logs"
	TableProtocol     = "protocol"
	TableMeasurements = "measurements"
)

// ErrFileExists is returned by Create when the target path is already a file.
var ErrFileExists = errors.New("database file already exists")

// measurementValueColumns is the number of val_NNN columns in the
// measurements table, one per pixel of a radiometric scan.
const measurementValueColumns = 256

const settingsSchema = `
CREATE TABLE settings (
	setting TEXT PRIMARY KEY NOT NULL COLLATE NOCASE,
	value TEXT COLLATE NOCASE
)`

const queueSchema = `
CREATE TABLE queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	done INTEGER NOT NULL DEFAULT 0,
	priority INTEGER NOT NULL DEFAULT 2,
	fails INTEGER NOT NULL DEFAULT 0,
	timestamp DATE DEFAULT (datetime('now', 'utc')),
	action TEXT NOT NULL COLLATE NOCASE,
	options TEXT NOT NULL DEFAULT '' COLLATE NOCASE
)`

const logsSchema = `
CREATE TABLE logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATE DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW')),
	level TEXT COLLATE NOCASE,
	source TEXT NOT NULL COLLATE NOCASE,
	log TEXT DEFAULT NULL COLLATE NOCASE
)`

const protocolSchema = `
CREATE TABLE protocol (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	number INTEGER NOT NULL UNIQUE,
	instrument TEXT NOT NULL COLLATE NOCASE,
	zenith INTEGER NOT NULL,
	azimuth INTEGER NOT NULL,
	repeat INTEGER NOT NULL DEFAULT 1,
	wait INTEGER NOT NULL DEFAULT 0
)`

// measurementColumns lists the named columns of the measurements table in
// insertion order. The val_NNN columns follow these.
var measurementColumns = []string{
	"timestamp",
	"valid",
	"setup_error",
	"cycle_id",
	"gnss_acquired",
	"gnss_qual",
	"gnss_lat",
	"gnss_lon",
	"batt_voltage",
	"head_voltage",
	"head_temp_hpt",
	"cycle_scan",
	"prot_sensor",
	"prot_zenith",
	"prot_azimuth",
	"sun_heading",
	"sun_elevation",
	"scan_heading",
	"scan_error",
	"scan_rep",
	"rep_error",
	"rep_unix",
	"rep_serial",
}

func measurementsSchema() string {
	var b strings.Builder
	b.WriteString(`CREATE TABLE measurements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATE DEFAULT (datetime('now', 'utc')),
	valid TEXT DEFAULT 'n' COLLATE NOCASE,
	setup_error TEXT COLLATE NOCASE,
	cycle_id TEXT,
	gnss_acquired DATE,
	gnss_qual INTEGER,
	gnss_lat REAL,
	gnss_lon REAL,
	batt_voltage REAL,
	head_voltage REAL,
	head_temp_hpt TEXT,
	cycle_scan INTEGER,
	prot_sensor TEXT,
	prot_zenith INTEGER,
	prot_azimuth INTEGER,
	sun_heading REAL,
	sun_elevation REAL,
	scan_heading REAL,
	scan_error TEXT,
	scan_rep INTEGER,
	rep_error TEXT,
	rep_unix REAL,
	rep_serial TEXT`)
	for i := 1; i <= measurementValueColumns; i++ {
		fmt.Fprintf(&b, ",\n\tval_%03d TEXT", i)
	}
	b.WriteString("\n)")
	return b.String()
}

// allTables is the creation order: referenced-by-nothing first, so the order
// only matters for readability of the resulting schema.
var allTables = []string{
	TableSettings,
	TableQueue,
	TableLogs,
	TableProtocol,
	TableMeasurements,
}

func schemaFor(table string) (string, bool) {
	switch table {
	case TableSettings:
		return settingsSchema, true
	case TableQueue:
		return queueSchema, true
	case TableLogs:
		return logsSchema, true
	case TableProtocol:
		return protocolSchema, true
	case TableMeasurements:
		return measurementsSchema(), true
	}
	return "", false
}

func validTable(table string) bool {
	_, ok := schemaFor(table)
	return ok
}

// hasRowIDs reports whether a table carries an autoincrement id column, which
// LastID and ranged exports rely on. The settings table is keyed by name.
func hasRowIDs(table string) bool {
	return validTable(table) && table != TableSettings
}

// defaultSettings seeds a freshly created settings table with every key the
// station software reads, so later SetSetting calls only ever update.
var defaultSettings = [][2]string{
	{"station_id", "MSO"},
	{"manual", "1"},
	{"measurements_start_hour", "6"},
	{"measurements_stop_hour", "19"},
	{"max_sun_zenith", "90"},
	{"email_enabled", "1"},
	{"email_recipient", ""},
	{"email_server_port", ""},
	{"email_user", ""},
	{"email_password", ""},
	{"email_min_level", "warning"},
	{"ftp_server", ""},
	{"ftp_user", ""},
	{"ftp_password", ""},
	{"ftp_working_dir", "hypermaq"},
	{"head_true_north_offset", "180"},
	{"radiance_angle_offset", "20"},
	{"irradiance_angle_offset", "60"},
	{"keepout_heading_low", "0"},
	{"keepout_heading_high", "0"},
	{"gnss_acquired", "none"},
	{"gnss_lat", "51.2"},
	{"gnss_lon", "2.9"},
	{"gnss_qual", "0"},
	{"gnss_mag_var", "0"},
	{"id_last_backup_meas", "0"},
	{"id_last_backup_log", "0"},
	{"system_set_up", "0"},
	{"tty_irradiance", "/dev/ttyO1"},
	{"tty_radiance", "/dev/ttyO2"},
	{"tty_multiplexer", "/dev/ttyO4"},
	{"tty_gnss", "/dev/ttyO5"},
}

// defaultProtocol is the reference above-water measurement sequence: an
// irradiance scan pointing up, sky and water radiance scans, then the mirror
// scans to close the cycle.
var defaultProtocol = []ProtocolStep{
	{Instrument: "e", Zenith: 180, Azimuth: 90, Repeat: 3, Wait: 0},
	{Instrument: "l", Zenith: 140, Azimuth: 90, Repeat: 3, Wait: 0},
	{Instrument: "l", Zenith: 40, Azimuth: 90, Repeat: 6, Wait: 0},
	{Instrument: "l", Zenith: 140, Azimuth: 90, Repeat: 3, Wait: 0},
	{Instrument: "e", Zenith: 180, Azimuth: 90, Repeat: 3, Wait: 0},
}

// Create builds a new station database at path. The file must not already
// exist. A nil or empty tables slice creates all five tables; a subset
// creates only those (used by Export to shape a target file). When
// populateDefaults is set, the settings and protocol tables are seeded with
// the reference defaults.
func Create(path string, tables []string, populateDefaults bool) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	if len(tables) == 0 {
		tables = allTables
	}
	for _, table := range tables {
		if !validTable(table) {
			return fmt.Errorf("unknown table %q, valid tables: %s", table, strings.Join(allTables, ", "))
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to create database %s: %w", path, err)
	}
	defer db.Close()

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		ddl, _ := schemaFor(table)
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}

	if populateDefaults {
		if contains(tables, TableSettings) {
			for _, kv := range defaultSettings {
				_, err := tx.Exec("INSERT INTO settings (setting, value) VALUES ($1, $2)", kv[0], kv[1])
				if err != nil {
					return fmt.Errorf("failed to seed setting %s: %w", kv[0], err)
				}
			}
		}
		if contains(tables, TableProtocol) {
			for i, step := range defaultProtocol {
				_, err := tx.Exec(
					"INSERT INTO protocol (number, instrument, zenith, azimuth, repeat, wait) VALUES ($1, $2, $3, $4, $5, $6)",
					i+1, step.Instrument, step.Zenith, step.Azimuth, step.Repeat, step.Wait)
				if err != nil {
					return fmt.Errorf("failed to seed protocol step %d: %w", i+1, err)
				}
			}
		}
	}

	return tx.Commit()
}

func contains(tables []string, table string) bool {
	for _, t := range tables {
		if t == table {
			return true
		}
	}
	return false
}
