package stationdb

import (
	"errors"
	"path"
	"testing"

	"github.com/jmoiron/sqlx"
)

func addLogRows(t *testing.T, db *Database, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := db.AddLog("entry", "test", LevelInfo); err != nil {
			t.Fatalf("AddLog returned error: %v", err)
		}
	}
}

func TestExportRange(t *testing.T) {
	db := newTestDB(t)
	addLogRows(t, db, 5)

	target := path.Join(t.TempDir(), "export.db")
	err := db.Export(target, []TableRange{{Table: TableLogs, Start: 2, Stop: 4}})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	exported := sqlx.MustConnect("sqlite3", target)
	defer exported.Close()

	var ids []int
	if err := exported.Select(&ids, "SELECT id FROM logs ORDER BY id"); err != nil {
		t.Fatalf("Failed to read exported logs: %v", err)
	}
	// Start inclusive, stop exclusive
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Errorf("Expected ids [2 3], got %v", ids)
	}

	// Only the selected table exists in the target
	var count int
	if err := exported.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='queue'"); err != nil {
		t.Fatalf("Failed to inspect target schema: %v", err)
	}
	if count != 0 {
		t.Error("Export target should only contain the selected tables")
	}
}

func TestExportUnbounded(t *testing.T) {
	db := newTestDB(t)
	addLogRows(t, db, 3)

	target := path.Join(t.TempDir(), "export.db")
	if err := db.Export(target, []TableRange{{Table: TableLogs}}); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	exported := sqlx.MustConnect("sqlite3", target)
	defer exported.Close()

	var count int
	if err := exported.Get(&count, "SELECT COUNT(*) FROM logs"); err != nil {
		t.Fatalf("Failed to count exported logs: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 exported rows, got %d", count)
	}
}

func TestExportRefusesExistingTarget(t *testing.T) {
	db := newTestDB(t)
	addLogRows(t, db, 1)

	target := path.Join(t.TempDir(), "export.db")
	if err := db.Export(target, []TableRange{{Table: TableLogs}}); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	err := db.Export(target, []TableRange{{Table: TableLogs}})
	if !errors.Is(err, ErrExportTargetExists) {
		t.Fatalf("Expected ErrExportTargetExists, got %v", err)
	}
}

func TestExportSkipsInvalidRange(t *testing.T) {
	db := newTestDB(t)
	addLogRows(t, db, 3)
	if err := db.AddTask("measure", PriorityNormal, ""); err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}

	target := path.Join(t.TempDir(), "export.db")
	err := db.Export(target, []TableRange{
		{Table: TableLogs, Start: 3, Stop: 2}, // invalid, skipped
		{Table: TableQueue},
	})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	exported := sqlx.MustConnect("sqlite3", target)
	defer exported.Close()

	var logCount, queueCount int
	if err := exported.Get(&logCount, "SELECT COUNT(*) FROM logs"); err != nil {
		t.Fatalf("Failed to count exported logs: %v", err)
	}
	if err := exported.Get(&queueCount, "SELECT COUNT(*) FROM queue"); err != nil {
		t.Fatalf("Failed to count exported tasks: %v", err)
	}
	if logCount != 0 {
		t.Errorf("Expected the invalid range to export nothing, got %d rows", logCount)
	}
	if queueCount != 1 {
		t.Errorf("Expected the valid table to be exported, got %d rows", queueCount)
	}
}

func TestExportValidation(t *testing.T) {
	db := newTestDB(t)
	target := path.Join(t.TempDir(), "export.db")

	if err := db.Export(target, nil); err == nil {
		t.Error("Export should reject an empty table selection")
	}
	if err := db.Export(target, []TableRange{{Table: "bogus"}}); err == nil {
		t.Error("Export should reject an unknown table")
	}
	if err := db.Export(target, []TableRange{{Table: TableSettings, Start: 1}}); err == nil {
		t.Error("Export should reject a ranged settings export")
	}
}

func TestExportSettingsWhole(t *testing.T) {
	db := newTestDB(t)

	target := path.Join(t.TempDir(), "export.db")
	if err := db.Export(target, []TableRange{{Table: TableSettings}}); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	exported := sqlx.MustConnect("sqlite3", target)
	defer exported.Close()

	var value string
	if err := exported.Get(&value, "SELECT value FROM settings WHERE setting = 'station_id'"); err != nil {
		t.Fatalf("Failed to read exported setting: %v", err)
	}
	if value != "MSO" {
		t.Errorf("Expected exported station_id 'MSO', got %q", value)
	}
}
