// Package kvstore provides the persistent key-value stores used for
// credential slots: an SQLite file for the CLI and an in-memory map for
// tests and ephemeral runs.
package kvstore
