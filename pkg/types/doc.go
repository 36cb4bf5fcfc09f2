// Package types defines the source records, persisted document shapes,
// store configuration, and standard error types for the grimoire
// ingestion system.
package types
