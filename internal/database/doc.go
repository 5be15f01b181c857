// Package database persists catalog snapshots to SQLite.
//
// The catalog lives in memory; this package only stores whole snapshots of
// its primary tables and reads them back on start-up. Secondary indexes are
// never written: they are rebuilt from the loaded rows.
//
//	db, err := database.NewDatabase("./librarian.db", false)
//	defer db.Close()
//
//	err = db.SaveSnapshot(ctx, store.Snapshot())
//	snap, err := db.LoadSnapshot(ctx)
//	err = store.Restore(snap)
//
// Loose key/value state (the loan sequence, the time of the last save) goes
// through the settings sub-package.
package database
