// Package timeouts centralizes context deadlines for handler I/O.
//
// Pick by operation shape:
//   - Ping: health checks
//   - Short: single-document reads (settings, lookups)
//   - Medium: list queries and filtered dashboard fetches
//   - Long: multi-collection writes
//   - Batch: multi-file photo uploads
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
	batch  = 60 * time.Second
)

// Ping is the deadline for connectivity checks.
func Ping() time.Duration { return ping }

// Short is the deadline for single-document reads.
func Short() time.Duration { return short }

// Medium is the deadline for list and aggregation queries.
func Medium() time.Duration { return medium }

// Long is the deadline for writes touching several collections.
func Long() time.Duration { return long }

// Batch is the deadline for bulk work like photo upload batches.
func Batch() time.Duration { return batch }
