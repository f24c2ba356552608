// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Run IDs
//
// Every sync run gets a random identifier. WithRunID attaches it to the
// logger so that all lines emitted by one CI job can be correlated, even when
// several jobs write to the same log file.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json or console
//   - File: optional path of a rotated JSON log file (via lumberjack)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log = logger.WithRunID(log, uuid.NewString())
//	log.Info("Sync started")
package logger
