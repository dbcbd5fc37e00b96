// Package queue persists stock movements that could not be delivered and
// replays them when the backend is reachable again.
//
// The Store keeps pending entries in a SQLite database under the data
// directory, strictly ordered by position. Flush drains the queue from the
// head one entry at a time: a delivered entry is deleted, a network-class
// failure stops the pass with the remainder untouched, and any other failure
// moves the entry to the dropped ledger so the operator can see what was
// rejected. Only one flush runs at a time; a second trigger while a pass is
// in progress is a no-op.
//
// The Coordinator connects the reconnect signal from the network monitor and
// explicit sync requests to the same Flush gate.
//
// Schema changes bump schemaVersion in schema.go; operators clear the
// database to adopt a new schema.
package queue
