// Package store keeps the recent-solves activity feed for mdp-service.
//
// Only summaries are held (shape, mode, iterations, termination, g, timing).
// Value vectors and policies are returned to the caller and never retained.
// Entries expire after a TTL; Run evicts them in the background.
package store
