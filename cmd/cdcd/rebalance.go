package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twmb/cdcstream/pkg/assign"
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Recompute a sticky partition assignment for one datastream group",
	Long: `Reads a whole-fleet assignment snapshot and a datastream group's current
partition set, applies the sticky assignment algorithm, and writes the
updated snapshot back out.`,
	RunE: runRebalance,
}

var (
	rebalanceAssignmentPath string
	rebalancePartitionsPath string
	rebalanceGroup          string
	rebalanceOutPath        string
)

func init() {
	rebalanceCmd.Flags().StringVar(&rebalanceAssignmentPath, "assignment", "", "path to the current assignment snapshot (JSON)")
	rebalanceCmd.Flags().StringVar(&rebalancePartitionsPath, "partitions", "", "path to the group's current partition id list (JSON array)")
	rebalanceCmd.Flags().StringVar(&rebalanceGroup, "group", "", "datastream group name")
	rebalanceCmd.Flags().StringVar(&rebalanceOutPath, "out", "", "path to write the updated assignment snapshot (defaults to --assignment)")
	_ = rebalanceCmd.MarkFlagRequired("assignment")
	_ = rebalanceCmd.MarkFlagRequired("partitions")
	_ = rebalanceCmd.MarkFlagRequired("group")
	rootCmd.AddCommand(rebalanceCmd)
}

func runRebalance(cmd *cobra.Command, args []string) error {
	current, err := loadAssignment(rebalanceAssignmentPath)
	if err != nil {
		return fmt.Errorf("cdcd: loading assignment: %w", err)
	}
	metadata, err := loadPartitionsMetadata(rebalancePartitionsPath, rebalanceGroup)
	if err != nil {
		return fmt.Errorf("cdcd: loading partitions metadata: %w", err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	updated, err := assign.AssignPartitions(current, metadata, rnd)
	if err != nil {
		return fmt.Errorf("cdcd: assigning partitions: %w", err)
	}

	outPath := rebalanceOutPath
	if outPath == "" {
		outPath = rebalanceAssignmentPath
	}
	if err := saveAssignment(outPath, updated); err != nil {
		return fmt.Errorf("cdcd: writing updated assignment: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"group": rebalanceGroup, "written_to": outPath})
}
