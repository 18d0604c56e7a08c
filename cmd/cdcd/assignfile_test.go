package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/twmb/cdcstream/pkg/assign"
)

func TestSaveAndLoadAssignment_RoundTrips(t *testing.T) {
	original := assign.Assignment{
		"host-a": {
			{
				Name:         "t1",
				Prefix:       "orders",
				Partitions:   map[assign.PartitionID]struct{}{"p0": {}, "p1": {}},
				Dependencies: map[assign.TaskName]struct{}{"t0": {}},
			},
		},
		"host-b": {
			{
				Name:       "t2",
				Prefix:     "orders",
				Partitions: map[assign.PartitionID]struct{}{"p2": {}},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "assignment.json")
	require.NoError(t, saveAssignment(path, original))

	loaded, err := loadAssignment(path)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"host-a", "host-b"}, instanceNames(loaded))

	var taskA *assign.Task
	for _, task := range loaded["host-a"] {
		if task.Name == "t1" {
			taskA = task
		}
	}
	require.NotNil(t, taskA)
	require.Equal(t, "orders", taskA.Prefix)
	require.Equal(t, original["host-a"][0].Partitions, taskA.Partitions)
	require.Equal(t, original["host-a"][0].Dependencies, taskA.Dependencies)

	taskB := loaded["host-b"][0]
	require.Equal(t, assign.TaskName("t2"), taskB.Name)
	require.Empty(t, taskB.Dependencies)
}

func instanceNames(a assign.Assignment) []string {
	out := make([]string, 0, len(a))
	for inst := range a {
		out = append(out, string(inst))
	}
	return out
}

func TestLoadAssignment_MissingFile(t *testing.T) {
	_, err := loadAssignment(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.Error(t, err)
}

func TestLoadTargetAssignment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.json")
	writeJSONFile(t, path, map[string][]string{
		"host-a": {"p0", "p1"},
		"host-b": {"p2"},
	})

	target, err := loadTargetAssignment(path)
	require.NoError(t, err)
	require.Len(t, target, 2)
	require.Contains(t, target["host-a"], assign.PartitionID("p0"))
	require.Contains(t, target["host-a"], assign.PartitionID("p1"))
	require.Contains(t, target["host-b"], assign.PartitionID("p2"))
}

func TestLoadPartitionsMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partitions.json")
	writeJSONFile(t, path, []string{"p0", "p1", "p2"})

	meta, err := loadPartitionsMetadata(path, "orders")
	require.NoError(t, err)
	require.Equal(t, "orders", meta.Group)
	require.Len(t, meta.Partitions, 3)
	require.Contains(t, meta.Partitions, assign.PartitionID("p1"))
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}
