// Package schema provides a read-through cache of column metadata over a
// binlog.TableInfoProvider, and a provider backed by a live MySQL
// connection's information_schema.
package schema

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/twmb/cdcstream/pkg/binlog"
)

type tableKey struct{ db, table string }

// Cache is a read-through, indefinitely-cacheable store of column
// metadata, safe for concurrent reads with single-writer population.
//
// Schema-change invalidation is explicitly out of scope for the binlog
// assembler (serving stale metadata after an ALTER is a known
// limitation), but Invalidate is exposed here as the hook a future
// schema-event listener would call.
type Cache struct {
	source binlog.TableInfoProvider

	mu   sync.RWMutex
	data map[tableKey][]binlog.ColumnInfo
}

// NewCache wraps source with an in-process cache.
func NewCache(source binlog.TableInfoProvider) *Cache {
	return &Cache{source: source, data: make(map[tableKey][]binlog.ColumnInfo)}
}

// GetColumnList implements binlog.TableInfoProvider.
func (c *Cache) GetColumnList(ctx context.Context, db, table string) ([]binlog.ColumnInfo, error) {
	key := tableKey{db, table}

	c.mu.RLock()
	if cols, ok := c.data[key]; ok {
		c.mu.RUnlock()
		return cols, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Double-check: another goroutine may have populated this key while
	// we waited for the write lock.
	if cols, ok := c.data[key]; ok {
		return cols, nil
	}

	cols, err := c.source.GetColumnList(ctx, db, table)
	if err != nil {
		return nil, err
	}
	c.data[key] = cols
	return cols, nil
}

// Invalidate drops a table's cached columns, forcing the next
// GetColumnList call to refetch from source.
func (c *Cache) Invalidate(db, table string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, tableKey{db, table})
}

// MySQLProvider is a binlog.TableInfoProvider backed by a live MySQL
// connection, querying information_schema.columns the way most binlog
// consumers bootstrap column metadata they can't get from the wire format
// alone.
type MySQLProvider struct {
	db *sql.DB
}

// NewMySQLProvider wraps an open *sql.DB (driver
// github.com/go-sql-driver/mysql).
func NewMySQLProvider(db *sql.DB) *MySQLProvider {
	return &MySQLProvider{db: db}
}

func (p *MySQLProvider) GetColumnList(ctx context.Context, db, table string) ([]binlog.ColumnInfo, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT column_name, column_key, ordinal_position, is_nullable, column_type
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, db, table)
	if err != nil {
		return nil, fmt.Errorf("schema: querying columns for %s.%s: %w", db, table, err)
	}
	defer rows.Close()

	var cols []binlog.ColumnInfo
	for rows.Next() {
		var name, key, nullable, colType string
		var ordinal int
		if err := rows.Scan(&name, &key, &ordinal, &nullable, &colType); err != nil {
			return nil, fmt.Errorf("schema: scanning column row for %s.%s: %w", db, table, err)
		}
		cols = append(cols, binlog.ColumnInfo{
			Name:     name,
			IsKey:    key == "PRI" || key == "UNI",
			Ordinal:  ordinal - 1, // binlog rows are 0-indexed
			Nullable: nullable == "YES",
			Type:     colType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schema: iterating columns for %s.%s: %w", db, table, err)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Ordinal < cols[j].Ordinal })
	return cols, nil
}
