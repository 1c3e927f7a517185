// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// configuration structure for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port and the API key. An empty API key
// leaves the API unauthenticated.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the start command to configure the listener and the auth middleware.
package server
