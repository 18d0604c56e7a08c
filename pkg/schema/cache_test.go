package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twmb/cdcstream/pkg/binlog"
)

type countingProvider struct {
	calls   int
	columns []binlog.ColumnInfo
}

func (p *countingProvider) GetColumnList(ctx context.Context, db, table string) ([]binlog.ColumnInfo, error) {
	p.calls++
	return p.columns, nil
}

func TestCache_PopulatesOnceAndServesFromMemory(t *testing.T) {
	source := &countingProvider{columns: []binlog.ColumnInfo{{Name: "id", IsKey: true}}}
	cache := NewCache(source)

	cols1, err := cache.GetColumnList(context.Background(), "d", "t")
	require.NoError(t, err)
	cols2, err := cache.GetColumnList(context.Background(), "d", "t")
	require.NoError(t, err)

	require.Equal(t, cols1, cols2)
	require.Equal(t, 1, source.calls)
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	source := &countingProvider{columns: []binlog.ColumnInfo{{Name: "id", IsKey: true}}}
	cache := NewCache(source)

	_, err := cache.GetColumnList(context.Background(), "d", "t")
	require.NoError(t, err)
	cache.Invalidate("d", "t")
	_, err = cache.GetColumnList(context.Background(), "d", "t")
	require.NoError(t, err)

	require.Equal(t, 2, source.calls)
}

func TestCache_DistinctTablesCachedIndependently(t *testing.T) {
	source := &countingProvider{columns: []binlog.ColumnInfo{{Name: "id", IsKey: true}}}
	cache := NewCache(source)

	_, err := cache.GetColumnList(context.Background(), "d", "t1")
	require.NoError(t, err)
	_, err = cache.GetColumnList(context.Background(), "d", "t2")
	require.NoError(t, err)

	require.Equal(t, 2, source.calls)
}
