// Package history persists the outcome of every exported track in a SQLite
// database so earlier runs can be reviewed with `mkvaudur history`.
//
// The schema lives in schema.sql and is versioned by schemaVersion. There
// are no migrations: after a schema change users delete the database and
// it is recreated on the next run.
package history
