package i

import "context"

// Lease guards a player identity so only one agent plays it at a time.
type Lease interface {
	// Acquire blocks until the lease is held or ctx is done.
	Acquire(ctx context.Context) error

	// Refresh extends a held lease.
	Refresh(ctx context.Context) error

	// Release gives the lease up.
	Release(ctx context.Context) error
}
