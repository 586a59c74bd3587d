package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lectern-app/lectern/internal/daemon"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show an overview of reading activity",
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	snap := d.Store.Snapshot()
	docsCompleted, categoryRatios := d.Store.Counters()

	streak, err := d.Streak.CurrentStreak()
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}
	prog, err := d.Achievement.Progress()
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}

	fmt.Printf("Documents:    %d completed of %d visited\n", docsCompleted, len(snap.Documents))
	fmt.Printf("Reading time: %s\n", formatDuration(snap.Stats.TotalTimeSpent))
	fmt.Printf("Streak:       %d days (longest %d)\n", streak.CurrentDays, streak.LongestDays)
	fmt.Printf("Achievements: %d/%d, %d points\n",
		len(prog.Unlocked), d.Achievement.TotalCount(), prog.TotalPoints)

	if len(categoryRatios) > 0 {
		fmt.Println("\nBy category:")
		cats := make([]string, 0, len(categoryRatios))
		for c := range categoryRatios {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			fmt.Printf("  %-14s %3.0f%%\n", c, categoryRatios[c]*100)
		}
	}
	return nil
}
