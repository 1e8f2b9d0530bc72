// Package cache provides a small generic read-through cache.
//
// Entries live for a fixed TTL and are built with singleflight so a burst of
// reads for the same key results in a single load. The rank service uses it to
// serve repeated item reads without a round trip to Firestore.
//
// Invalidate bumps a per-key generation; a load that started before it
// returns to its waiters but is not stored.
package cache
