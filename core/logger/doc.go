// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Context Awareness
//
// Two helpers attach correlation fields to a logger:
//   - WithRayID extracts the RayID (request ID) from a Fiber context.
//   - WithRunID tags every line of a sync run with its run_id and target.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// Log output is written to stderr. Stdout is reserved for the sync summary lines
// printed by the CLI.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
package logger
