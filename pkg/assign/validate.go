package assign

import "fmt"

// Validate is the sanity validator: it checks that, for metadata's group,
// the partition sets across all of the group's tasks in a cover exactly
// metadata.Partitions with no duplicates and nothing missing.
//
// A failure here is fatal and unrecoverable at this layer: both
// AssignPartitions and MovePartitions call it before returning a result,
// and surface its error unchanged rather than returning a partial
// assignment.
func Validate(a Assignment, metadata PartitionsMetadata) error {
	seen := make(map[PartitionID]TaskName, len(metadata.Partitions))
	for _, gt := range groupTasks(a, metadata.Group) {
		for p := range gt.task.Partitions {
			if owner, dup := seen[p]; dup {
				return fmt.Errorf("%w: partition %q assigned to both %q and %q",
					ErrInvariantViolation, p, owner, gt.task.Name)
			}
			seen[p] = gt.task.Name
		}
	}
	for p := range metadata.Partitions {
		if _, ok := seen[p]; !ok {
			return fmt.Errorf("%w: partition %q missing from group %q",
				ErrInvariantViolation, p, metadata.Group)
		}
	}
	if len(seen) != len(metadata.Partitions) {
		return fmt.Errorf("%w: group %q carries %d partitions, want %d",
			ErrInvariantViolation, metadata.Group, len(seen), len(metadata.Partitions))
	}
	return nil
}
