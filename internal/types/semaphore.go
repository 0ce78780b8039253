// Package types provides small concurrency primitives shared across sift's
// scan pipeline.
package types

// Semaphore implements a counting semaphore using a buffered channel.
// It bounds concurrent access to a resource by blocking when the limit
// is reached. Used for both the cross-root max_scan_threads gate and the
// per-root max_file_threads admission gate.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }
