package assign

import "errors"

// ErrInvariantViolation is returned when the post-assignment sanity check
// fails: some partition was lost or duplicated across a group's tasks.
// Per the design this is fatal to the rebalance call; the caller is
// expected to abort and retry, not to use a partial result.
var ErrInvariantViolation = errors.New("assign: invariant violation")

// ErrNoGroupTasks is returned when a group has zero tasks in the current
// assignment. The source design divides the partition count by the task
// count without guarding against zero; this package treats that as an
// explicit precondition failure instead.
var ErrNoGroupTasks = errors.New("assign: group has no tasks to rebalance")

// ErrNoTargetTask is returned by MovePartitions when the target assignment names an
// instance that currently hosts no task of the group being moved; there is
// nowhere on that instance to land the incoming partitions.
var ErrNoTargetTask = errors.New("assign: no target task on destination instance")
