package binlog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpoint_String(t *testing.T) {
	c := Checkpoint{SourceID: "src", Sequence: 5, File: "mysql-bin.000003", Position: 1024}
	require.Equal(t, "src:5@mysql-bin.000003:1024", c.String())
}

func TestCheckpoint_Less(t *testing.T) {
	require.True(t, Checkpoint{File: "mysql-bin.000001", Position: 100}.Less(Checkpoint{File: "mysql-bin.000002", Position: 1}))
	require.True(t, Checkpoint{File: "a", Position: 10}.Less(Checkpoint{File: "a", Position: 20}))
	require.False(t, Checkpoint{File: "a", Position: 20}.Less(Checkpoint{File: "a", Position: 10}))
	require.False(t, Checkpoint{File: "a", Position: 10}.Less(Checkpoint{File: "a", Position: 10}))
}
