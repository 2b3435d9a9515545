// Package kv is the persistent store underneath the Aither client: a plain
// key/value table in the local SQLite database.
//
// Every higher-level record (user registry, chat sessions, global config,
// active-user pointer) is kept under its own key as a serialized blob, the
// same layout the browser version kept in local storage. The store knows
// nothing about those shapes; see the state repository for the typed view.
//
// SQLiteRepository works over dbx.DBTX, so it can be bound either to the
// *sql.DB for single writes or to a *sql.Tx when several keys must change
// together:
//
//	repo := kv.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "aither_global_config", raw)
//	raw, _ = repo.Get(ctx, "aither_global_config")
package kv
