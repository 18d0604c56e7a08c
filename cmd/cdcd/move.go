package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twmb/cdcstream/pkg/assign"
)

var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Apply an operator-directed partition move, recording lineage",
	RunE:  runMove,
}

var (
	moveAssignmentPath string
	moveTargetPath     string
	movePartitionsPath string
	moveGroup          string
	moveOutPath        string
)

func init() {
	moveCmd.Flags().StringVar(&moveAssignmentPath, "assignment", "", "path to the current assignment snapshot (JSON)")
	moveCmd.Flags().StringVar(&moveTargetPath, "target", "", "path to the desired instance->partitions map (JSON)")
	moveCmd.Flags().StringVar(&movePartitionsPath, "partitions", "", "path to the group's current partition id list (JSON array)")
	moveCmd.Flags().StringVar(&moveGroup, "group", "", "datastream group name")
	moveCmd.Flags().StringVar(&moveOutPath, "out", "", "path to write the updated assignment snapshot (defaults to --assignment)")
	_ = moveCmd.MarkFlagRequired("assignment")
	_ = moveCmd.MarkFlagRequired("target")
	_ = moveCmd.MarkFlagRequired("partitions")
	_ = moveCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	current, err := loadAssignment(moveAssignmentPath)
	if err != nil {
		return fmt.Errorf("cdcd: loading assignment: %w", err)
	}
	target, err := loadTargetAssignment(moveTargetPath)
	if err != nil {
		return fmt.Errorf("cdcd: loading target assignment: %w", err)
	}
	metadata, err := loadPartitionsMetadata(movePartitionsPath, moveGroup)
	if err != nil {
		return fmt.Errorf("cdcd: loading partitions metadata: %w", err)
	}

	updated, err := assign.MovePartitions(current, target, metadata)
	if err != nil {
		return fmt.Errorf("cdcd: moving partitions: %w", err)
	}

	outPath := moveOutPath
	if outPath == "" {
		outPath = moveAssignmentPath
	}
	if err := saveAssignment(outPath, updated); err != nil {
		return fmt.Errorf("cdcd: writing updated assignment: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"group": moveGroup, "written_to": outPath})
}
