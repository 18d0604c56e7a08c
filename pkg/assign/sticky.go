package assign

import (
	"fmt"
	"math/rand"
	"sort"
)

// AssignPartitions computes a new whole-fleet assignment that absorbs
// metadata's partition set into the tasks the group already has, mutating
// as few tasks as possible.
//
// The number of group tasks is never changed here; that is a higher-level
// strategy decision. rnd controls the only randomized step (the order
// unassigned partitions are handed out) and must be supplied by the caller
// so that tests can reproduce a run; pass rand.New(rand.NewSource(seed))
// for a deterministic call.
func AssignPartitions(current Assignment, metadata PartitionsMetadata, rnd *rand.Rand) (Assignment, error) {
	tasks := groupTasks(current, metadata.Group)
	total := len(tasks)
	if total == 0 {
		return nil, fmt.Errorf("%w: group %q", ErrNoGroupTasks, metadata.Group)
	}

	assigned := make(map[PartitionID]struct{})
	for _, gt := range tasks {
		for p := range gt.task.Partitions {
			if _, ok := metadata.Partitions[p]; ok {
				assigned[p] = struct{}{}
			}
		}
	}

	unassigned := make([]PartitionID, 0, len(metadata.Partitions))
	for p := range metadata.Partitions {
		if _, ok := assigned[p]; !ok {
			unassigned = append(unassigned, p)
		}
	}
	// Sort first so the shuffle is reproducible independent of map
	// iteration order, then shuffle to avoid hotspotting whichever task
	// happens to run first in traversal order across successive
	// rebalances.
	sort.Slice(unassigned, func(i, j int) bool { return unassigned[i] < unassigned[j] })
	rnd.Shuffle(len(unassigned), func(i, j int) { unassigned[i], unassigned[j] = unassigned[j], unassigned[i] })

	numPartitions := len(metadata.Partitions)
	base := numPartitions / total
	remainder := numPartitions % total

	out := current.clone()
	for _, gt := range tasks {
		newPartitions := make(map[PartitionID]struct{}, len(gt.task.Partitions))
		changed := false
		for p := range gt.task.Partitions {
			if _, ok := metadata.Partitions[p]; ok {
				newPartitions[p] = struct{}{}
			} else {
				changed = true // partition retired, dropping it is a change
			}
		}

		allowance := base
		consumesRemainder := remainder > 0
		if consumesRemainder {
			allowance = base + 1
		}
		for len(newPartitions) < allowance && len(unassigned) > 0 {
			last := len(unassigned) - 1
			p := unassigned[last]
			unassigned = unassigned[:last]
			newPartitions[p] = struct{}{}
			changed = true
		}
		if consumesRemainder {
			remainder--
		}

		if !changed {
			continue
		}
		replacement := newTask(
			nextGeneration(gt.task.Name),
			gt.task.Prefix,
			newPartitions,
			map[TaskName]struct{}{gt.task.Name: {}},
		)
		out[gt.instance][gt.index] = replacement
	}

	if err := Validate(out, metadata); err != nil {
		return nil, err
	}
	return out, nil
}
