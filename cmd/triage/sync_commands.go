package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued offline mutations and refetch",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var (
	syncMigrateGuest  bool
	syncRefreshScores bool
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncMigrateGuest, "migrate-guest", false, "Upload guest-mode tasks and tags into the signed-in account first")
	syncCmd.Flags().BoolVar(&syncRefreshScores, "refresh-scores", false, "Ask the scoring endpoint to rescore tasks")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if syncMigrateGuest {
		migrated, err := s.coordinator.MigrateGuestData(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Migrated %d guest tasks\n", migrated)
	}

	pending := s.coordinator.PendingMutations()
	if err := s.coordinator.Drain(ctx); err != nil {
		return err
	}
	remaining := s.coordinator.PendingMutations()
	fmt.Printf("Replayed %d queued mutations", pending-remaining)
	if remaining > 0 {
		fmt.Printf(" (%d failed, still queued)", remaining)
	}
	fmt.Println()

	if syncRefreshScores {
		if s.coordinator.RefreshScores(ctx) {
			fmt.Println("Scores refreshed from endpoint")
		} else {
			fmt.Println("Scoring endpoint unavailable; local scores stand")
		}
	}
	return nil
}
