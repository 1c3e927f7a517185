// Package config provides configuration management for asset-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Storage: S3/MinIO credentials, timeouts and retries
//   - Log: Logging level and format
//   - Sync: local roots, object name prefixes and containers of the media and static targets
//
// Environment keys are the upper-cased section and field joined by an
// underscore, e.g. SYNC_STATIC_ROOT or STORAGE_ENDPOINT.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.StaticContainer)
package config
