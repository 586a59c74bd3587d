package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lectern-app/lectern/internal/daemon"
)

func init() {
	rootCmd.AddCommand(progressCmd)
}

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show per-document reading progress",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	snap := d.Store.Snapshot()
	if len(snap.Documents) == 0 {
		fmt.Println("No reading activity recorded yet.")
		return nil
	}

	slugs := make([]string, 0, len(snap.Documents))
	for slug := range snap.Documents {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DOCUMENT\tCATEGORY\tSCROLL\tTIME\tSTATUS")
	for _, slug := range slugs {
		doc := snap.Documents[slug]
		status := "in progress"
		if doc.Completed {
			status = "completed " + doc.CompletedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%s\t%s\n",
			doc.Slug,
			doc.Category,
			doc.ScrollPercent,
			formatDuration(doc.TimeSpent),
			status,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nTotal reading time: %s\n", formatDuration(snap.Stats.TotalTimeSpent))
	return nil
}

// formatDuration renders a duration as compact h/m/s text.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
