package assign

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMovePartitions_WithLineage(t *testing.T) {
	taskX := newTask("g-x", "g", partSet("p1", "p2"), nil)
	taskY := newTask("g-y", "g", partSet("p3"), nil)
	current := Assignment{
		"i1": {taskX},
		"i2": {taskY},
	}
	meta := metaSet("g", "p1", "p2", "p3")
	target := TargetAssignment{
		"i2": partSet("p1"),
	}

	out, err := MovePartitions(current, target, meta)
	require.NoError(t, err)

	xPrime := out["i1"][0]
	require.NotSame(t, taskX, xPrime)
	require.Equal(t, partSet("p2"), xPrime.Partitions)

	yPrime := out["i2"][0]
	require.NotSame(t, taskY, yPrime)
	require.Equal(t, partSet("p1", "p3"), yPrime.Partitions)
	require.Contains(t, yPrime.Dependencies, TaskName("g-x"))

	require.NoError(t, Validate(out, meta))
}

func TestMovePartitions_IntoEmptyInstanceFails(t *testing.T) {
	taskX := newTask("g-x", "g", partSet("p1", "p2"), nil)
	taskY := newTask("g-y", "g", partSet("p3"), nil)
	current := Assignment{
		"i1": {taskX},
		"i2": {taskY},
	}
	meta := metaSet("g", "p1", "p2", "p3")
	target := TargetAssignment{
		"i3": partSet("p1"),
	}

	_, err := MovePartitions(current, target, meta)
	require.ErrorIs(t, err, ErrNoTargetTask)
}

func TestMovePartitions_DropsStalePartitions(t *testing.T) {
	taskX := newTask("g-x", "g", partSet("p1", "p2"), nil)
	current := Assignment{"i1": {taskX}}
	meta := metaSet("g", "p1", "p2")
	// p99 is no longer in the group; the target entry naming it is
	// silently dropped.
	target := TargetAssignment{"i1": partSet("p99")}

	out, err := MovePartitions(current, target, meta)
	require.NoError(t, err)
	require.Same(t, taskX, out["i1"][0])
}

func TestMovePartitions_SingleSourceMultipleDestinations(t *testing.T) {
	taskX := newTask("g-x", "g", partSet("p1", "p2"), nil)
	taskY := newTask("g-y", "g", partSet(), nil)
	taskZ := newTask("g-z", "g", partSet(), nil)
	current := Assignment{
		"i1": {taskX},
		"i2": {taskY},
		"i3": {taskZ},
	}
	meta := metaSet("g", "p1", "p2")
	target := TargetAssignment{
		"i2": partSet("p1"),
		"i3": partSet("p2"),
	}

	out, err := MovePartitions(current, target, meta)
	require.NoError(t, err)

	require.Len(t, out["i1"][0].Partitions, 0)
	require.Equal(t, partSet("p1"), out["i2"][0].Partitions)
	require.Equal(t, partSet("p2"), out["i3"][0].Partitions)
	require.Contains(t, out["i2"][0].Dependencies, TaskName("g-x"))
	require.Contains(t, out["i3"][0].Dependencies, TaskName("g-x"))

	require.NoError(t, Validate(out, meta))
}
