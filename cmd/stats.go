package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/matchscope/matchscope/pkg/storage"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-category change statistics from the change log.",
	Long:  "Prints per-category change statistics from the change log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(dbPath()); err != nil {
			return fmt.Errorf("database not found: %s", dbPath())
		}
		db, err := storage.Open(dbPath())
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No data in the database to generate stats.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "CATEGORY\tCHANGES\tCRITICAL\t")

		var totalChanges, totalCritical int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t\n", s.Category, s.Count, s.Critical)
			totalChanges += s.Count
			totalCritical += s.Critical
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t\n", totalChanges, totalCritical)

		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
