package cmd

import (
	"fmt"

	"github.com/brk3/arena/internal/apiclient"
	"github.com/spf13/cobra"
)

var boardWindow string

var boardCmd = &cobra.Command{
	Use:   "board <arena-id>",
	Short: "Show an arena's leaderboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return board(cmd, args[0])
	},
}

func board(cmd *cobra.Command, arenaID string) error {
	client := apiclient.New(cfg.APIBaseURL, cfg.AuthToken)
	resp, err := client.GetLeaderboard(cmd.Context(), arenaID, boardWindow)
	if err != nil {
		return fmt.Errorf("fetching leaderboard: %w", err)
	}

	if len(resp.Entries) == 0 {
		cmd.Printf("No completions in the last %s.\n", resp.Window)
		return nil
	}
	for _, e := range resp.Entries {
		if e.AverageValue != nil {
			cmd.Printf("%3d. %-24s %d completions, avg %.2f\n",
				e.Rank, e.Name, e.TotalCount, *e.AverageValue)
		} else {
			cmd.Printf("%3d. %-24s %d completions\n", e.Rank, e.Name, e.TotalCount)
		}
	}
	if resp.Truncated {
		cmd.Println("Note: standings are based on a truncated completion history.")
	}
	return nil
}

func init() {
	boardCmd.Flags().StringVar(&boardWindow, "window", "week", "time window: today, week, month or year")
	rootCmd.AddCommand(boardCmd)
}
