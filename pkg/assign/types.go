// Package assign implements sticky partition assignment for datastream
// groups: it decides, for one logical group, how its partitions are spread
// across the tasks already running on a fleet of worker instances.
//
// The package treats partition identifiers as opaque, hashable tokens: it
// never parses or interprets them. See Task for the unit it rebalances and
// Assignment for the whole-fleet view it consumes and produces.
package assign

import "sort"

// Instance identifies one worker in the fleet. The assignment engine treats
// it as an opaque string; cluster membership and leader election live
// outside this package.
type Instance string

// PartitionID identifies one shard of a datastream group. Opaque by design:
// see the package doc.
type PartitionID string

// TaskName is a task's stable identity. A Task is never mutated in place;
// when its partition set changes, a replacement Task is produced under a
// new name and the original name is recorded in the replacement's
// Dependencies.
type TaskName string

// Task is a unit of work carrying a subset of a datastream group's
// partitions. Tasks are immutable once constructed: AssignPartitions and
// MovePartitions replace a task whose partitions change with a new Task
// value, and carry an unchanged task over as the same pointer.
type Task struct {
	Name   TaskName
	Prefix string // the datastream group name this task belongs to

	Partitions map[PartitionID]struct{}

	// Dependencies lists prior task names whose partitions this task
	// absorbed. Consumers use this to defer startup until predecessors
	// have flushed. Additive: a move only ever grows this set.
	Dependencies map[TaskName]struct{}
}

func newTask(name TaskName, prefix string, partitions map[PartitionID]struct{}, deps map[TaskName]struct{}) *Task {
	return &Task{Name: name, Prefix: prefix, Partitions: partitions, Dependencies: deps}
}

// partitionNames returns the task's partitions as a sorted slice, useful
// for deterministic output and tests.
func (t *Task) partitionNames() []string {
	out := make([]string, 0, len(t.Partitions))
	for p := range t.Partitions {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

func clonePartitionSet(s map[PartitionID]struct{}) map[PartitionID]struct{} {
	out := make(map[PartitionID]struct{}, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}

func cloneDependencySet(s map[TaskName]struct{}) map[TaskName]struct{} {
	out := make(map[TaskName]struct{}, len(s))
	for d := range s {
		out[d] = struct{}{}
	}
	return out
}

// Assignment is the whole-fleet view: every instance mapped to the tasks
// running on it. A task belongs to exactly one instance.
type Assignment map[Instance][]*Task

// instances returns the assignment's instance keys in sorted order. Map
// iteration order is not meaningful to the algorithm (tie-breaking among
// otherwise-equal tasks is explicitly don't-care, per the engine's design),
// but a stable traversal order keeps output reproducible for callers and
// tests.
func (a Assignment) instances() []Instance {
	out := make([]Instance, 0, len(a))
	for i := range a {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// clone produces a shallow copy of the assignment's instance->task-slice
// structure; Task pointers are shared, not duplicated, since unmutated
// tasks are carried over by identity.
func (a Assignment) clone() Assignment {
	out := make(Assignment, len(a))
	for i, tasks := range a {
		cp := make([]*Task, len(tasks))
		copy(cp, tasks)
		out[i] = cp
	}
	return out
}

// PartitionsMetadata describes the current full partition set of one
// datastream group, as observed by the coordinator.
type PartitionsMetadata struct {
	Group      string
	Partitions map[PartitionID]struct{}
}

// groupTask pairs a task with the instance currently hosting it, in the
// deterministic traversal order used throughout this package.
type groupTask struct {
	instance Instance
	index    int // position within Assignment[instance]
	task     *Task
}

// groupTasks extracts, in deterministic order, every task belonging to
// group across the whole-fleet assignment. This is the "group view
// builder" of the design: everything downstream operates only on this
// slice plus the instance/index needed to write a replacement back.
func groupTasks(a Assignment, group string) []groupTask {
	var out []groupTask
	for _, inst := range a.instances() {
		tasks := a[inst]
		idxs := make([]int, 0, len(tasks))
		for i, t := range tasks {
			if t.Prefix == group {
				idxs = append(idxs, i)
			}
		}
		sort.Slice(idxs, func(i, j int) bool { return tasks[idxs[i]].Name < tasks[idxs[j]].Name })
		for _, i := range idxs {
			out = append(out, groupTask{instance: inst, index: i, task: tasks[i]})
		}
	}
	return out
}
