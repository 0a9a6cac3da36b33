package stationdb

// Package stationdb manages the single SQLite file that backs an autonomous
// measurement station: device settings, a prioritized task queue with retry
// bookkeeping, an append-only log, the measurement protocol and the
// measurement archive, plus selective export into a fresh database file.
// Schema creation lives here too so a new station can be initialized and an
// export target shaped from the same table definitions.
