// Package middleware contains HTTP middleware for the Fiber application.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Implements API key validation (X-API-Key) to protect endpoints.
//   - RayID: Assigns a Request ID (RayID) to every incoming request,
//     injecting it into the context and response headers for tracing.
//
// These middleware components are registered globally in cmd/start.go.
package middleware
