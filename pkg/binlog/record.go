package binlog

import "time"

// ChangeRecord is a self-describing change produced from one row of a
// row-mutation event: an opcode, identifying metadata, and two JSON-ready
// projections of the row's columns.
type ChangeRecord struct {
	Opcode    RowOpcode
	GTID      string // "<source-id>:<sequence>"
	Timestamp time.Time
	DB        string
	Table     string

	// Key is column-name -> stringified value, restricted to key columns.
	Key map[string]string
	// Value is column-name -> stringified value, for every column.
	Value map[string]string
}

// Batch is everything the downstream producer needs to emit one
// transaction's records atomically.
type Batch struct {
	// Partition is hardcoded to 0: multi-partition output is a known
	// limitation, not yet supported at this layer.
	Partition  int32
	Checkpoint string
	Records    []ChangeRecord
}
