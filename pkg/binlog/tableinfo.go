package binlog

import "context"

// ColumnInfo describes one column of a table, as needed to shape a row
// mutation into a ChangeRecord's key and value projections.
type ColumnInfo struct {
	Name     string
	IsKey    bool
	Ordinal  int
	Nullable bool
	Type     string // MySQL column type, e.g. "varchar(255)", "bigint"
}

// TableInfoProvider fetches column metadata for a table. Results are
// cacheable indefinitely by the caller: schema-change invalidation is out
// of scope for this package (see schema.Cache.Invalidate for the hook a
// future schema-event listener would call).
type TableInfoProvider interface {
	GetColumnList(ctx context.Context, db, table string) ([]ColumnInfo, error)
}
