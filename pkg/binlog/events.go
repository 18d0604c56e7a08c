// Package binlog assembles a MySQL binary-log event stream, as delivered
// by a replication client, into whole transactions and transforms their
// row mutations into self-describing change records handed to a
// downstream producer.
//
// The package never interprets a transaction's payload beyond turning its
// row events into ChangeRecords; wire I/O to MySQL and the physical
// encoding of those records are the caller's concern.
package binlog

import (
	"github.com/go-mysql-org/go-mysql/replication"
)

// Category is the classifier's internal bucket for a raw binlog event,
// independent of the MySQL wire format's many event-type constants.
type Category int

const (
	CategoryRotate Category = iota
	CategoryIgnorable
	CategoryTxnStart
	CategoryTxnEnd
	CategoryRollback
	CategoryTableMap
	CategoryRowMutation
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryRotate:
		return "rotate"
	case CategoryIgnorable:
		return "ignorable"
	case CategoryTxnStart:
		return "txn-start"
	case CategoryTxnEnd:
		return "txn-end"
	case CategoryRollback:
		return "rollback"
	case CategoryTableMap:
		return "table-map"
	case CategoryRowMutation:
		return "row-mutation"
	default:
		return "unknown"
	}
}

// RowOpcode names the DML operation a row-mutation event represents.
type RowOpcode string

const (
	OpInsert RowOpcode = "INSERT"
	OpUpdate RowOpcode = "UPDATE"
	OpDelete RowOpcode = "DELETE"
)

// rowOpcodeForEventType derives the opcode from the raw MySQL event type.
//
// The upstream go-mysql-org/go-mysql library (like the MySQL wire format
// itself) reports four distinct rows-event type codes that collapse to
// three opcodes; a known quirk in at least one widely copied reference
// implementation swaps the V1/V2 constants for DELETE in its dispatch arm.
// Both constants are normalized to OpDelete here regardless of which one
// the library reports, so that bug can't resurface.
func rowOpcodeForEventType(t replication.EventType) (RowOpcode, error) {
	switch t {
	case replication.WRITE_ROWS_EVENTv1, replication.WRITE_ROWS_EVENTv2:
		return OpInsert, nil
	case replication.UPDATE_ROWS_EVENTv1, replication.UPDATE_ROWS_EVENTv2:
		return OpUpdate, nil
	case replication.DELETE_ROWS_EVENTv1, replication.DELETE_ROWS_EVENTv2:
		return OpDelete, nil
	default:
		return "", &UnknownOpcodeError{EventType: t}
	}
}

// Classify maps a raw binlog event to its Category. Row-mutation event
// types are all classified as CategoryRowMutation; the specific opcode is
// derived separately by rowOpcodeForEventType when the transaction state
// machine actually shapes the row.
func Classify(ev *replication.BinlogEvent) Category {
	switch payload := ev.Event.(type) {
	case *replication.RotateEvent:
		return CategoryRotate
	case *replication.FormatDescriptionEvent:
		return CategoryIgnorable
	case *replication.GenericEvent:
		if ev.Header.EventType == replication.STOP_EVENT {
			return CategoryIgnorable
		}
		return CategoryUnknown
	case *replication.GTIDEvent:
		return CategoryTxnStart
	case *replication.QueryEvent:
		switch normalizeQuery(payload.Query) {
		case "BEGIN":
			return CategoryTxnStart
		case "COMMIT":
			return CategoryTxnEnd
		case "ROLLBACK":
			return CategoryRollback
		default:
			return CategoryIgnorable
		}
	case *replication.XIDEvent:
		return CategoryTxnEnd
	case *replication.TableMapEvent:
		return CategoryTableMap
	case *replication.RowsEvent:
		switch ev.Header.EventType {
		case replication.WRITE_ROWS_EVENTv1, replication.WRITE_ROWS_EVENTv2,
			replication.UPDATE_ROWS_EVENTv1, replication.UPDATE_ROWS_EVENTv2,
			replication.DELETE_ROWS_EVENTv1, replication.DELETE_ROWS_EVENTv2:
			return CategoryRowMutation
		default:
			return CategoryUnknown
		}
	default:
		return CategoryUnknown
	}
}

func normalizeQuery(q []byte) string {
	s := string(q)
	// Queries observed here are the bare transaction-control statements;
	// trim surrounding whitespace a proxy or driver may have added.
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}
