package binlog

import "fmt"

// Checkpoint is the resume position handed to the downstream producer
// alongside an emitted batch. Its exact text form is a contract with the
// consumer on the other end of the checkpoint, not something this package
// needs to parse back.
type Checkpoint struct {
	SourceID string
	Sequence int64
	File     string
	Position uint32
}

// String formats the checkpoint as an opaque token. The format here
// concatenates the four fields with a separator unlikely to appear in a
// file name or source id; callers that need a different wire form should
// treat this as a reference implementation, not a fixed contract.
func (c Checkpoint) String() string {
	return fmt.Sprintf("%s:%d@%s:%d", c.SourceID, c.Sequence, c.File, c.Position)
}

// Less reports whether c sorts before o under (file, position) ordering,
// ignoring source/sequence. Used by tests to assert checkpoint
// monotonicity across successive commits.
func (c Checkpoint) Less(o Checkpoint) bool {
	if c.File != o.File {
		return c.File < o.File
	}
	return c.Position < o.Position
}
