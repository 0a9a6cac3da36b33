package stationdb

import (
	"fmt"
	"strings"
)

// Measurement holds one radiometric scan plus the station state it was taken
// in. Data carries up to 256 pixel values; missing trailing values are stored
// as empty strings so every row has the full column set.
type Measurement struct {
	Timestamp    string // UTC "YYYY-MM-DD HH:MM:SS"; empty lets the database stamp it
	Valid        string // "y" or "n"
	SetupErrors  []string
	CycleID      string
	GNSSAcquired string
	GNSSQual     int
	GNSSLat      float64
	GNSSLon      float64
	BattVoltage  float64
	HeadVoltage  float64
	HeadTempHPT  string
	CycleScan    int
	ProtSensor   string
	ProtZenith   int
	ProtAzimuth  int
	SunHeading   float64
	SunElevation float64
	ScanHeading  float64
	ScanErrors   []string
	ScanRep      int
	RepError     string
	RepUnix      float64
	RepSerial    string
	Data         []string
}

// AddMeasurement stores a measurement row. Error lists are flattened to a
// single "a | b" string the way the downstream processing expects them.
func (d *Database) AddMeasurement(m Measurement) error {
	if len(m.Data) > measurementValueColumns {
		return fmt.Errorf("measurement has %d values, at most %d are stored", len(m.Data), measurementValueColumns)
	}

	valid := m.Valid
	if valid == "" {
		valid = "n"
	}

	columns := make([]string, 0, len(measurementColumns)+measurementValueColumns)
	values := make([]interface{}, 0, len(measurementColumns)+measurementValueColumns)

	add := func(column string, value interface{}) {
		columns = append(columns, column)
		values = append(values, value)
	}

	if m.Timestamp != "" {
		add("timestamp", m.Timestamp)
	}
	add("valid", valid)
	add("setup_error", strings.Join(m.SetupErrors, " | "))
	add("cycle_id", m.CycleID)
	add("gnss_acquired", m.GNSSAcquired)
	add("gnss_qual", m.GNSSQual)
	add("gnss_lat", m.GNSSLat)
	add("gnss_lon", m.GNSSLon)
	add("batt_voltage", m.BattVoltage)
	add("head_voltage", m.HeadVoltage)
	add("head_temp_hpt", m.HeadTempHPT)
	add("cycle_scan", m.CycleScan)
	add("prot_sensor", m.ProtSensor)
	add("prot_zenith", m.ProtZenith)
	add("prot_azimuth", m.ProtAzimuth)
	add("sun_heading", m.SunHeading)
	add("sun_elevation", m.SunElevation)
	add("scan_heading", m.ScanHeading)
	add("scan_error", strings.Join(m.ScanErrors, " | "))
	add("scan_rep", m.ScanRep)
	add("rep_error", m.RepError)
	add("rep_unix", m.RepUnix)
	add("rep_serial", m.RepSerial)

	for i := 1; i <= measurementValueColumns; i++ {
		value := ""
		if i <= len(m.Data) {
			value = m.Data[i-1]
		}
		add(fmt.Sprintf("val_%03d", i), value)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO measurements (%s) VALUES (%s)",
		strings.Join(columns, ", "), placeholders)

	if _, err := d.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to add measurement: %w", err)
	}
	return nil
}
