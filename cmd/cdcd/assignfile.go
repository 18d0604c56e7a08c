package main

import (
	"encoding/json"
	"os"

	"github.com/twmb/cdcstream/pkg/assign"
)

// taskFile is the on-disk JSON shape of one Task: assign.Task's map fields
// don't round-trip through encoding/json on their own, so the coordinator
// reads and writes this flattened form instead.
type taskFile struct {
	Name         string   `json:"name"`
	Prefix       string   `json:"prefix"`
	Partitions   []string `json:"partitions"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type assignmentFile map[string][]taskFile

func loadAssignment(path string) (assign.Assignment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file assignmentFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	out := make(assign.Assignment, len(file))
	for inst, tasks := range file {
		converted := make([]*assign.Task, 0, len(tasks))
		for _, tf := range tasks {
			parts := make(map[assign.PartitionID]struct{}, len(tf.Partitions))
			for _, p := range tf.Partitions {
				parts[assign.PartitionID(p)] = struct{}{}
			}
			deps := make(map[assign.TaskName]struct{}, len(tf.Dependencies))
			for _, d := range tf.Dependencies {
				deps[assign.TaskName(d)] = struct{}{}
			}
			converted = append(converted, &assign.Task{
				Name:         assign.TaskName(tf.Name),
				Prefix:       tf.Prefix,
				Partitions:   parts,
				Dependencies: deps,
			})
		}
		out[assign.Instance(inst)] = converted
	}
	return out, nil
}

func saveAssignment(path string, a assign.Assignment) error {
	file := make(assignmentFile, len(a))
	for inst, tasks := range a {
		tfs := make([]taskFile, 0, len(tasks))
		for _, t := range tasks {
			parts := make([]string, 0, len(t.Partitions))
			for p := range t.Partitions {
				parts = append(parts, string(p))
			}
			deps := make([]string, 0, len(t.Dependencies))
			for d := range t.Dependencies {
				deps = append(deps, string(d))
			}
			tfs = append(tfs, taskFile{
				Name:         string(t.Name),
				Prefix:       t.Prefix,
				Partitions:   parts,
				Dependencies: deps,
			})
		}
		file[string(inst)] = tfs
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func loadTargetAssignment(path string) (assign.TargetAssignment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file map[string][]string
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	out := make(assign.TargetAssignment, len(file))
	for inst, ids := range file {
		parts := make(map[assign.PartitionID]struct{}, len(ids))
		for _, id := range ids {
			parts[assign.PartitionID(id)] = struct{}{}
		}
		out[assign.Instance(inst)] = parts
	}
	return out, nil
}

func loadPartitionsMetadata(path, group string) (assign.PartitionsMetadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return assign.PartitionsMetadata{}, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return assign.PartitionsMetadata{}, err
	}
	parts := make(map[assign.PartitionID]struct{}, len(ids))
	for _, id := range ids {
		parts[assign.PartitionID(id)] = struct{}{}
	}
	return assign.PartitionsMetadata{Group: group, Partitions: parts}, nil
}
