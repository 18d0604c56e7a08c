package binlog

import "context"

// Producer is the downstream collaborator a transaction's records are
// handed to once a commit is observed. Send is asynchronous: callback may
// run on a different goroutine than the one that called Send, and it
// reports whether the whole batch was accepted. Partial batches are never
// acceptable — a Producer implementation must guarantee all-or-nothing
// delivery of a single Send call.
type Producer interface {
	Send(ctx context.Context, batch Batch, callback func(error))
}

// FailureHandler is notified when a Producer reports a batch failure. The
// design intent is that a corrected implementation closes the producer and
// rewinds to the last durable checkpoint; this package does not perform
// that rewind itself; it only guarantees the failure is surfaced here
// rather than silently acknowledged.
type FailureHandler func(batch Batch, err error)
