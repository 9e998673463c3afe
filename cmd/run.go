package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchscope/matchscope/internal/utils"
)

// runCmd executes a single processing cycle and exits.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one processing cycle: fetch, compare, notify, commit",
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetInt("timeout")

		lock, err := utils.NewDataLock(dataDir())
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		proc, _, cleanup, err := buildProcessor()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
		defer cancel()

		res, err := proc.RunCycle(ctx)
		if err != nil {
			return err
		}

		if !res.Summary.HasChanges() {
			fmt.Println("No changes detected.")
			return nil
		}
		fmt.Printf("Changes: %d new, %d updated, %d removed (%d field-level records, %d critical)\n",
			len(res.Summary.NewMatches), len(res.Summary.UpdatedMatches), len(res.Summary.RemovedMatches),
			len(res.Summary.Changes), res.Summary.CriticalChanges)
		if res.AssetsGenerated > 0 {
			fmt.Printf("Generated assets for %d matches\n", res.AssetsGenerated)
		}
		if res.Notified > 0 {
			fmt.Printf("Delivered %d notifications\n", res.Notified)
		}
		for _, e := range res.Errors {
			fmt.Printf("Warning: %s\n", e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("timeout", 300, "Cycle timeout in seconds")
}
