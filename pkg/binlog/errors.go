package binlog

import (
	"errors"
	"fmt"

	"github.com/go-mysql-org/go-mysql/replication"
)

// ErrUnknownTableID is logged (never returned) when a row event names a
// table-id this transaction's table map has never recorded. The row is
// skipped; the transaction continues.
var ErrUnknownTableID = errors.New("binlog: unknown table id")

// UnknownOpcodeError indicates the classifier handed the shaper a row
// event type it cannot map to INSERT/UPDATE/DELETE. This can only happen
// from a classifier/event-type mismatch and is treated as fatal: it
// signals a bug in this package, not a bad input.
type UnknownOpcodeError struct {
	EventType replication.EventType
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("binlog: unknown row opcode for event type %v", e.EventType)
}
