package binlog

import (
	"testing"

	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ev   *replication.BinlogEvent
		want Category
	}{
		{"rotate", rotateEvent("b", 4), CategoryRotate},
		{"format description", formatDescriptionEvent(4), CategoryIgnorable},
		{"gtid", gtidEvent([16]byte{1}, 1, 10), CategoryTxnStart},
		{"begin", queryEvent("BEGIN", 10), CategoryTxnStart},
		{"commit", queryEvent("COMMIT", 10), CategoryTxnEnd},
		{"rollback", queryEvent("ROLLBACK", 10), CategoryRollback},
		{"other query", queryEvent("CREATE TABLE t (a int)", 10), CategoryIgnorable},
		{"xid", xidEvent(10), CategoryTxnEnd},
		{"table map", tableMapEvent(1, "d", "t", 10), CategoryTableMap},
		{"write rows", writeRowsEvent(1, 10, nil), CategoryRowMutation},
		{"update rows", updateRowsEvent(1, 10, nil), CategoryRowMutation},
		{"delete rows v1", deleteRowsEvent(1, 10, nil, true), CategoryRowMutation},
		{"delete rows v2", deleteRowsEvent(1, 10, nil, false), CategoryRowMutation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.ev))
		})
	}
}

func TestRowOpcodeForEventType_NormalizesDeleteV1AndV2(t *testing.T) {
	v1, err := rowOpcodeForEventType(replication.DELETE_ROWS_EVENTv1)
	require.NoError(t, err)
	require.Equal(t, OpDelete, v1)

	v2, err := rowOpcodeForEventType(replication.DELETE_ROWS_EVENTv2)
	require.NoError(t, err)
	require.Equal(t, OpDelete, v2)
}

func TestRowOpcodeForEventType_UnknownIsError(t *testing.T) {
	_, err := rowOpcodeForEventType(replication.HEARTBEAT_EVENT)
	require.Error(t, err)
	var unknown *UnknownOpcodeError
	require.ErrorAs(t, err, &unknown)
}

func TestNormalizeQuery(t *testing.T) {
	require.Equal(t, "BEGIN", normalizeQuery([]byte("  BEGIN  \n")))
	require.Equal(t, "COMMIT", normalizeQuery([]byte("COMMIT")))
	require.Equal(t, "", normalizeQuery([]byte("   ")))
}
