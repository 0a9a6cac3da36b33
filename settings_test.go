package stationdb

import (
	"errors"
	"testing"
)

func TestSettingRoundTrip(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetSetting("test_setting", "test_setting_value"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}

	value, err := db.Setting("test_setting")
	if err != nil {
		t.Fatalf("Setting returned error: %v", err)
	}
	if value != "test_setting_value" {
		t.Errorf("Expected 'test_setting_value', got %q", value)
	}
}

func TestSettingOverwrite(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetSetting("station_id", "OST"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	value, err := db.Setting("station_id")
	if err != nil {
		t.Fatalf("Setting returned error: %v", err)
	}
	if value != "OST" {
		t.Errorf("Expected 'OST', got %q", value)
	}

	// Only one row should remain for the key
	var count int
	if err := db.DB().Get(&count, "SELECT COUNT(*) FROM settings WHERE setting = 'station_id'"); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row for station_id, got %d", count)
	}
}

func TestSettingMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Setting("no_such_setting")
	if !errors.Is(err, ErrNoSetting) {
		t.Fatalf("Expected ErrNoSetting, got %v", err)
	}
}

func TestSettingDefaultsSeeded(t *testing.T) {
	db := newTestDB(t)

	value, err := db.Setting("station_id")
	if err != nil {
		t.Fatalf("Setting returned error: %v", err)
	}
	if value != "MSO" {
		t.Errorf("Expected default station_id 'MSO', got %q", value)
	}
}

func TestSettingInt(t *testing.T) {
	db := newTestDB(t)

	hour, err := db.SettingInt("measurements_start_hour")
	if err != nil {
		t.Fatalf("SettingInt returned error: %v", err)
	}
	if hour != 6 {
		t.Errorf("Expected 6, got %d", hour)
	}

	if _, err := db.SettingInt("station_id"); err == nil {
		t.Error("SettingInt should fail for a non-numeric value")
	}
}

func TestSettingCacheCoherence(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetSetting("manual", "0"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	// Read once to populate the cache, overwrite, read again
	if _, err := db.Setting("manual"); err != nil {
		t.Fatalf("Setting returned error: %v", err)
	}
	if err := db.SetSetting("manual", "1"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	value, err := db.Setting("manual")
	if err != nil {
		t.Fatalf("Setting returned error: %v", err)
	}
	if value != "1" {
		t.Errorf("Expected cached value to follow the write, got %q", value)
	}
}
