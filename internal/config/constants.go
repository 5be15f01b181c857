package config

const (
	// DefaultDatabasePath is where catalog snapshots are kept
	DefaultDatabasePath = "./librarian.db"

	DefaultSnapshotSchedule = "*/15 * * * *"
)
