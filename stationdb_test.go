package stationdb

import (
	"path"
	"testing"
)

// newTestDB creates a fully populated station database in a temp directory.
func newTestDB(t *testing.T) *Database {
	t.Helper()
	dbPath := path.Join(t.TempDir(), "station.db")
	if err := Create(dbPath, nil, true); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	db, err := Connect(dbPath)
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestCreateRefusesExistingFile(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "station.db")
	if err := Create(dbPath, nil, true); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := Create(dbPath, nil, true); err == nil {
		t.Fatal("Create should refuse an existing file")
	}
}

func TestCreateRejectsUnknownTable(t *testing.T) {
	dbPath := path.Join(t.TempDir(), "station.db")
	if err := Create(dbPath, []string{"queue", "bogus"}, false); err == nil {
		t.Fatal("Create should reject an unknown table name")
	}
}

func TestCreateBuildsAllTables(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"settings", "queue", "logs", "protocol", "measurements"} {
		var name string
		err := db.DB().Get(&name,
			"SELECT name FROM sqlite_master WHERE type='table' AND name = $1", table)
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
		}
	}
}

func TestLastID(t *testing.T) {
	db := newTestDB(t)

	last, err := db.LastID(TableQueue)
	if err != nil {
		t.Fatalf("LastID returned error: %v", err)
	}
	if last != 0 {
		t.Errorf("Expected last id 0 for empty queue, got %d", last)
	}

	if err := db.AddTask("measure", PriorityNormal, ""); err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}
	if err := db.AddTask("upload", PriorityNormal, ""); err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}

	last, err = db.LastID(TableQueue)
	if err != nil {
		t.Fatalf("LastID returned error: %v", err)
	}
	if last != 2 {
		t.Errorf("Expected last id 2, got %d", last)
	}
}

func TestLastIDRejectsSettingsTable(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.LastID(TableSettings); err == nil {
		t.Fatal("LastID should reject the settings table")
	}
	if _, err := db.LastID("nonsense"); err == nil {
		t.Fatal("LastID should reject an unknown table")
	}
}

func TestVacuum(t *testing.T) {
	db := newTestDB(t)
	if err := db.Vacuum(); err != nil {
		t.Fatalf("Vacuum returned error: %v", err)
	}
}
