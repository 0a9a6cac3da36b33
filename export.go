package stationdb

import (
	"errors"
	"fmt"
	"log"
)

// TableRange selects a table and an optional id window for Export. Start is
// inclusive, Stop exclusive; zero means unbounded on that side. The settings
// table has no ids and must be exported whole.
type TableRange struct {
	Table string
	Start int
	Stop  int
}

// ErrExportTargetExists is returned when the export destination is already a
// file; exports never overwrite.
var ErrExportTargetExists = errors.New("export target already exists")

// Export copies the selected tables (and id ranges) into a freshly created
// database at targetPath. The target gets the same schema as the source for
// the selected tables only. A range whose Start is not below its Stop is
// skipped with a warning rather than failing the whole export.
func (d *Database) Export(targetPath string, ranges []TableRange) error {
	if len(ranges) == 0 {
		return errors.New("no tables selected for export")
	}

	tables := make([]string, 0, len(ranges))
	for _, r := range ranges {
		if !validTable(r.Table) {
			return fmt.Errorf("unknown table %q", r.Table)
		}
		if !hasRowIDs(r.Table) && (r.Start != 0 || r.Stop != 0) {
			return fmt.Errorf("table %s has no ids, it cannot be exported by range", r.Table)
		}
		if !contains(tables, r.Table) {
			tables = append(tables, r.Table)
		}
	}

	if err := Create(targetPath, tables, false); err != nil {
		if errors.Is(err, ErrFileExists) {
			return fmt.Errorf("%w: %s", ErrExportTargetExists, targetPath)
		}
		return fmt.Errorf("failed to create export target: %w", err)
	}

	if _, err := d.db.Exec("ATTACH DATABASE $1 AS export_target", targetPath); err != nil {
		return fmt.Errorf("failed to attach export target: %w", err)
	}
	defer func() {
		if _, err := d.db.Exec("DETACH DATABASE export_target"); err != nil {
			log.Printf("failed to detach export target: %v", err)
		}
	}()

	for _, r := range ranges {
		query, args, ok := exportQuery(r)
		if !ok {
			log.Printf("skipping export of %s: stop id %d is not above start id %d", r.Table, r.Stop, r.Start)
			continue
		}
		if _, err := d.db.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to export table %s: %w", r.Table, err)
		}
	}

	return nil
}

// exportQuery builds the copy statement for one table range. The table name
// was validated against the schema whitelist by the caller.
func exportQuery(r TableRange) (string, []interface{}, bool) {
	query := fmt.Sprintf("INSERT INTO export_target.%s SELECT * FROM %s", r.Table, r.Table)
	var args []interface{}

	switch {
	case r.Start != 0 && r.Stop != 0:
		if r.Start >= r.Stop {
			return "", nil, false
		}
		query += " WHERE id >= $1 AND id < $2"
		args = []interface{}{r.Start, r.Stop}
	case r.Start != 0:
		query += " WHERE id >= $1"
		args = []interface{}{r.Start}
	case r.Stop != 0:
		query += " WHERE id < $1"
		args = []interface{}{r.Stop}
	}

	return query, args, true
}
