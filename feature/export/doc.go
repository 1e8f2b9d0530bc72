// Package export snapshots the ranks of a project into object storage.
//
// Each export is one JSON object named exports/<projectId>/<UTC time>.json in
// the configured bucket, which is created on first use.
//
// # HTTP Endpoints
//
//   - POST /projects/:projectId/exports : Write an export (201).
//   - GET  /projects/:projectId/exports : List written exports.
package export
