// Package dailynotes is the Composition Root for the daily notes store.
//
// It connects the core domain (entries, day buckets, the Store and its
// cache) with a storage adapter and the in-process broadcast hub that keeps
// every window showing the same note.
//
// Storage:
//
//   - **Flat files**: one "2006-01-02.txt" per day, stored verbatim.
//   - **SQL**: one row per entry in SQLite or PostgreSQL, with goose migrations.
//
// Every mutation holds a single lock from the durable write through the
// cache update and the "note-updated" broadcast.
//
// Usage:
//
//	app, err := dailynotes.OpenDir(ctx, "./notes", dailynotes.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	text, err := app.Store.Append(ctx, "Buy milk", false)
package dailynotes
