// Package server holds the HTTP server configuration.
//
// The main entry point (cmd/start.go) builds the Fiber application; this package
// only defines the listen settings and the optional API key that the auth
// middleware enforces.
//
// # Configuration
//
// The Config struct defines the bind host, the HTTP port (3000 by default),
// the API key and the request body limit.
//
// # Usage
//
//	addr := cfg.Server.Address() // "0.0.0.0:3000"
package server
