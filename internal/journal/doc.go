// Package journal keeps a SQLite history of enrichment attempts and task
// removals.
//
// The journal is informational: the processed ledger remains the source of
// truth for which sidecars are done. Rows carry the run id so a single
// invocation can be traced across log lines and history output. The schema is
// embedded from schema.sql and guarded by a schema_version row; bump
// schemaVersion whenever the tables change.
package journal
