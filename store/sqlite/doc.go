// Package sqlite provides the durable store behind quota accounting
// and conversation history, backed by a single SQLite database using
// the pure-Go modernc.org/sqlite driver.
package sqlite
