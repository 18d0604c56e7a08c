package kafkaout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twmb/cdcstream/pkg/binlog"
)

func TestToKgoRecord(t *testing.T) {
	rec := binlog.ChangeRecord{
		Opcode: binlog.OpInsert,
		GTID:   "src:1",
		DB:     "d",
		Table:  "t",
		Key:    map[string]string{"id": "1"},
		Value:  map[string]string{"id": "1", "name": "a"},
	}

	r, err := toKgoRecord("topic", 0, "src:1@file:10", rec)
	require.NoError(t, err)
	require.Equal(t, "topic", r.Topic)
	require.Equal(t, int32(0), r.Partition)

	var key map[string]string
	require.NoError(t, json.Unmarshal(r.Key, &key))
	require.Equal(t, rec.Key, key)

	var value map[string]string
	require.NoError(t, json.Unmarshal(r.Value, &value))
	require.Equal(t, rec.Value, value)

	headers := make(map[string]string, len(r.Headers))
	for _, h := range r.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, string(binlog.OpInsert), headers["opcode"])
	require.Equal(t, "src:1", headers["gtid"])
	require.Equal(t, "d", headers["db"])
	require.Equal(t, "t", headers["table"])
	require.Equal(t, "src:1@file:10", headers["checkpoint"])
}
