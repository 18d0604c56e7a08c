package assign

import (
	"fmt"
	"sort"

	"github.com/google/btree"
)

// taskLoad orders group tasks on one instance by partition count, with
// traversal order (the deterministic groupTasks order) as the tie-break;
// it is the btree.Item used to pick a move's destination task, the same
// least-loaded-first selection a sticky assignor uses to decide who
// receives newly unassigned work.
type taskLoad struct {
	count int
	index int // position within the instance's groupTasks slice
}

func (l taskLoad) Less(other btree.Item) bool {
	o := other.(taskLoad)
	if l.count != o.count {
		return l.count < o.count
	}
	return l.index < o.index
}

// TargetAssignment describes, for a move, the desired new home instance of
// each to-be-moved partition: Instance -> partitions that should land
// there. Entries naming partitions no longer in the group are silently
// dropped, per the design.
type TargetAssignment map[Instance]map[PartitionID]struct{}

// unionInstances returns every instance named by either current or target,
// sorted. target may name an instance current has never heard of (that
// instance hosts no group task yet); such instances still need to be
// visited so MovePartitions can reject them with ErrNoTargetTask instead of
// silently dropping the partitions their tasks were meant to receive.
func unionInstances(current Assignment, target TargetAssignment) []Instance {
	seen := make(map[Instance]struct{}, len(current)+len(target))
	for i := range current {
		seen[i] = struct{}{}
	}
	for i := range target {
		seen[i] = struct{}{}
	}
	out := make([]Instance, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MovePartitions computes a new whole-fleet assignment that relocates the
// partitions named in target to their requested destination instances.
// Each task is replaced at most once: a task may both release partitions
// to other instances and receive partitions from other tasks in the same
// replacement, but it never appears twice in the result.
//
// MovePartitions fails with ErrNoTargetTask if target names an instance
// that hosts no task of the group; there would be nowhere to land the
// incoming partitions.
func MovePartitions(current Assignment, target TargetAssignment, metadata PartitionsMetadata) (Assignment, error) {
	tasks := groupTasks(current, metadata.Group)

	allToReassign := make(map[PartitionID]struct{})
	for _, byPartition := range target {
		for p := range byPartition {
			if _, ok := metadata.Partitions[p]; ok {
				allToReassign[p] = struct{}{}
			}
		}
	}

	// toRelease[taskName] is the subset of that task's current partitions
	// being released; sourceOf[partition] records which task released it,
	// for lineage on the receiving task.
	toRelease := make(map[TaskName]map[PartitionID]struct{}, len(tasks))
	sourceOf := make(map[PartitionID]TaskName, len(allToReassign))
	toReleaseAll := make(map[PartitionID]struct{}, len(allToReassign))
	for _, gt := range tasks {
		var mine map[PartitionID]struct{}
		for p := range gt.task.Partitions {
			if _, ok := allToReassign[p]; !ok {
				continue
			}
			if mine == nil {
				mine = make(map[PartitionID]struct{})
			}
			mine[p] = struct{}{}
			sourceOf[p] = gt.task.Name
			toReleaseAll[p] = struct{}{}
		}
		if mine != nil {
			toRelease[gt.task.Name] = mine
		}
	}

	out := current.clone()

	for _, inst := range unionInstances(current, target) {
		byPartition, ok := target[inst]
		var toMoveIn map[PartitionID]struct{}
		if ok {
			for p := range byPartition {
				if _, released := toReleaseAll[p]; released {
					if toMoveIn == nil {
						toMoveIn = make(map[PartitionID]struct{})
					}
					toMoveIn[p] = struct{}{}
				}
			}
		}

		instTasks := groupTasks(Assignment{inst: current[inst]}, metadata.Group)

		var targetIdx = -1
		if len(toMoveIn) > 0 {
			if len(instTasks) == 0 {
				return nil, fmt.Errorf("%w: instance %q", ErrNoTargetTask, inst)
			}
			byLoad := btree.New(8)
			for i, gt := range instTasks {
				byLoad.ReplaceOrInsert(taskLoad{count: len(gt.task.Partitions), index: i})
			}
			targetIdx = byLoad.Min().(taskLoad).index
		}

		for i, gt := range instTasks {
			newPartitions := clonePartitionSet(gt.task.Partitions)
			changed := false

			if released, mutate := toRelease[gt.task.Name]; mutate {
				for p := range released {
					delete(newPartitions, p)
				}
				changed = true
			}

			newDeps := cloneDependencySet(gt.task.Dependencies)
			if i == targetIdx {
				for p := range toMoveIn {
					newPartitions[p] = struct{}{}
					newDeps[sourceOf[p]] = struct{}{}
				}
				changed = true
			}

			if !changed {
				continue
			}
			newDeps[gt.task.Name] = struct{}{}
			replacement := newTask(nextGeneration(gt.task.Name), gt.task.Prefix, newPartitions, newDeps)
			out[gt.instance][gt.index] = replacement
		}
	}

	if err := Validate(out, metadata); err != nil {
		return nil, err
	}
	return out, nil
}
