package assign

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func partSet(ids ...string) map[PartitionID]struct{} {
	out := make(map[PartitionID]struct{}, len(ids))
	for _, id := range ids {
		out[PartitionID(id)] = struct{}{}
	}
	return out
}

func metaSet(group string, ids ...string) PartitionsMetadata {
	return PartitionsMetadata{Group: group, Partitions: partSet(ids...)}
}

func TestAssignPartitions_BalancedReassignment(t *testing.T) {
	current := Assignment{
		"i1": {
			newTask("g-a", "g", partSet("p1", "p2", "p3"), nil),
			newTask("g-b", "g", partSet("p4", "p5"), nil),
		},
	}
	meta := metaSet("g", "p1", "p2", "p3", "p4", "p5", "p6", "p7")

	out, err := AssignPartitions(current, meta, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	tasks := groupTasks(out, "g")
	require.Len(t, tasks, 2)

	sizes := []int{len(tasks[0].task.Partitions), len(tasks[1].task.Partitions)}
	require.ElementsMatch(t, []int{3, 4}, sizes)

	require.NoError(t, Validate(out, meta))
	require.NotEqual(t, TaskName("g-a"), tasks[0].task.Name)
	require.NotEqual(t, TaskName("g-b"), tasks[1].task.Name)
}

func TestAssignPartitions_StickyNoOp(t *testing.T) {
	taskA := newTask("g-a", "g", partSet("p1", "p2", "p3"), nil)
	taskB := newTask("g-b", "g", partSet("p4", "p5"), nil)
	current := Assignment{"i1": {taskA, taskB}}
	meta := metaSet("g", "p1", "p2", "p3", "p4", "p5")

	out, err := AssignPartitions(current, meta, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	require.Same(t, taskA, out["i1"][0])
	require.Same(t, taskB, out["i1"][1])
}

func TestAssignPartitions_DropsRetiredPartitions(t *testing.T) {
	taskA := newTask("g-a", "g", partSet("p1", "p2", "p3"), nil)
	current := Assignment{"i1": {taskA}}
	meta := metaSet("g", "p1", "p2")

	out, err := AssignPartitions(current, meta, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	got := out["i1"][0]
	require.NotSame(t, taskA, got)
	require.Len(t, got.Partitions, 2)
	require.Contains(t, got.Dependencies, TaskName("g-a"))
}

func TestAssignPartitions_NoGroupTasksFails(t *testing.T) {
	current := Assignment{"i1": {newTask("other-a", "other", partSet("p1"), nil)}}
	meta := metaSet("g", "p1")

	_, err := AssignPartitions(current, meta, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrNoGroupTasks)
}

func TestAssignPartitions_PartitionCountWithinOne(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		rnd := rand.New(rand.NewSource(int64(trial)))
		numTasks := 1 + rnd.Intn(7)
		numPartitions := rnd.Intn(40)

		tasks := make([]*Task, numTasks)
		for i := range tasks {
			tasks[i] = newTask(TaskName(string(rune('a'+i))+"0"), "g", partSet(), nil)
		}
		current := Assignment{"i1": tasks}

		ids := make([]string, numPartitions)
		for i := range ids {
			ids[i] = string(rune('A' + (i % 26)))
			if i >= 26 {
				ids[i] += string(rune('a' + i/26))
			}
		}
		meta := metaSet("g", ids...)

		out, err := AssignPartitions(current, meta, rnd)
		require.NoError(t, err)

		base := numPartitions / numTasks
		for _, gt := range groupTasks(out, "g") {
			n := len(gt.task.Partitions)
			require.True(t, n == base || n == base+1, "task %s has %d partitions, want %d or %d", gt.task.Name, n, base, base+1)
		}
	}
}
