package binlog

import (
	"context"
	"fmt"
	"time"
)

// shapeRows turns one row-mutation event's raw rows into ChangeRecords,
// fetching column metadata through provider. For UPDATE events, the
// go-mysql-org/go-mysql library reports each logical row as a
// (before, after) pair; only the after-image is shaped into a record, per
// the design.
func shapeRows(
	ctx context.Context,
	provider TableInfoProvider,
	opcode RowOpcode,
	gtid GTID,
	ts time.Time,
	db, table string,
	rows [][]interface{},
) ([]ChangeRecord, error) {
	columns, err := provider.GetColumnList(ctx, db, table)
	if err != nil {
		return nil, fmt.Errorf("binlog: fetching columns for %s.%s: %w", db, table, err)
	}

	step := 1
	start := 0
	if opcode == OpUpdate {
		step = 2
		start = 1 // the after-image half of each (before, after) pair
	}

	records := make([]ChangeRecord, 0, (len(rows)+step-1)/step)
	for i := start; i < len(rows); i += step {
		rec, err := shapeRow(opcode, gtid, ts, db, table, columns, rows[i])
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func shapeRow(
	opcode RowOpcode,
	gtid GTID,
	ts time.Time,
	db, table string,
	columns []ColumnInfo,
	row []interface{},
) (ChangeRecord, error) {
	rec := ChangeRecord{
		Opcode:    opcode,
		GTID:      gtid.String(),
		Timestamp: ts,
		DB:        db,
		Table:     table,
		Key:       make(map[string]string),
		Value:     make(map[string]string),
	}
	for _, col := range columns {
		if col.Ordinal < 0 || col.Ordinal >= len(row) {
			continue
		}
		s := stringifyValue(row[col.Ordinal])
		rec.Value[col.Name] = s
		if col.IsKey {
			rec.Key[col.Name] = s
		}
	}
	return rec, nil
}

// stringifyValue renders a column value from the replication library's
// driver-agnostic representation as a string for the key/value JSON
// projections. nil (SQL NULL) renders as the empty string; callers that
// need to distinguish NULL from an empty string should consult
// ColumnInfo.Nullable alongside this output.
func stringifyValue(v interface{}) string {
	if v == nil {
		return ""
	}
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
