// Package config provides configuration management for the rank API.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP API settings (host, port 3000, API key)
//   - Metrics: Prometheus endpoint (port 9000)
//   - Log: Logging level, format and optional rotating file
//   - Firestore: project id, emulator host, database and collection
//   - Rank: storage backend (firestore, memory, sql) and read cache TTL
//   - Database: SQL connection details for the sql backend
//   - Storage: S3/MinIO credentials and bucket for exports
//   - Tracing: OpenTelemetry OTLP endpoint
//   - Emulator: host:port of the local Firestore emulator
//
// Every field declares its default in a `default` struct tag. Environment
// variables use the upper-cased key with dots replaced by underscores, so
// firestore.emulator_host is read from FIRESTORE_EMULATOR_HOST. PROJECT_ID is
// accepted for the Firestore project; when nothing is set, the project id is
// the name of the working directory.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
