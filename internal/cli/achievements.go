package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lectern-app/lectern/internal/daemon"
)

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsAll, "all", false, "Include locked achievements")
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsAll bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "List earned achievements and points",
	RunE:  runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	prog, err := d.Achievement.Progress()
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}

	unlockedAt := make(map[string]string, len(prog.Unlocked))
	for _, u := range prog.Unlocked {
		unlockedAt[u.ID] = u.UnlockedAt.Format("2006-01-02")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ACHIEVEMENT\tRARITY\tPOINTS\tEARNED")
	for _, a := range d.Achievement.Catalog() {
		earned, ok := unlockedAt[a.ID]
		if !ok {
			if !achievementsAll {
				continue
			}
			earned = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.Name, a.Rarity, a.Points, earned)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d/%d earned, %d points\n",
		len(prog.Unlocked), d.Achievement.TotalCount(), prog.TotalPoints)
	return nil
}
