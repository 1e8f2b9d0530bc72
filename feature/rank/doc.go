// Package rank implements item ranking: registering items with a score range,
// submitting scores, and reading the running average.
//
// # Storage
//
// Ranks go through the Repository interface. Three backends exist:
//   - FirestoreRepository: one document per rank in the "ranks" collection;
//     scoring runs in a Firestore transaction and only updates average and total.
//   - SQLRepository: a GORM table, scoring under a row lock.
//   - MemoryRepository: a mutex-guarded map for tests and local runs.
//
// # HTTP Endpoints
//
//   - POST   /projects/:projectId/items              : Create item (201, 409 if it exists).
//   - GET    /projects/:projectId/items              : List live items.
//   - GET    /projects/:projectId/items/:itemId      : Get item (404 if missing).
//   - POST   /projects/:projectId/items/:itemId/rank : Submit a score (400 if out of range).
//   - DELETE /projects/:projectId/items/:itemId      : Soft-delete item.
//
// Errors are returned as {"error": "..."}.
package rank
