package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lectern-app/lectern/internal/daemon"
)

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all reading progress, streaks and achievements",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		fmt.Print("This permanently erases all local reading data. Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Store.Reset(); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}

	fmt.Println("All reading data erased.")
	return nil
}
