// Package remarks records optimization remarks: one record per applied
// rewrite, naming the pattern that fired and the operation text before and
// after. Remarks are observation only — they never influence rewriting.
//
// Two sinks are provided. The YAML emitter appends one document per remark
// to a file, suitable for diffing and code review. The SQLite store persists
// remarks durably and supports filtered queries from the CLI.
//
// Remark IDs are content-addressed: SHA-256 with domain separation over the
// NFC-normalized remark fields. The ID is stable across runs given the same
// input program and pipeline, so re-recording an identical rewrite is
// idempotent at the store level.
package remarks
