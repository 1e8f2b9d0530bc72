// Package models defines the rank entity, its request payloads and the domain
// errors shared by every rank backend.
//
// A Rank is keyed by projectId+itemId and carries a running average over
// Total scores, each bounded by [Min, Max].
package models
