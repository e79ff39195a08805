package cmd

import (
	"fmt"

	"github.com/brk3/arena/internal/apiclient"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete <arena-id> [value]",
	Short: "Record a completion in an arena",
	Long: `The "complete" command logs a completion against an arena. Arenas with a
unit type take a value, e.g. "arena complete <id> 5.2" for kilometres or
"arena complete <id> 25:00" for time.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return complete(cmd, args)
	},
}

func complete(cmd *cobra.Command, args []string) error {
	value := ""
	if len(args) == 2 {
		value = args[1]
	}

	client := apiclient.New(cfg.APIBaseURL, cfg.AuthToken)
	resp, err := client.RecordCompletion(cmd.Context(), args[0], value)
	if err != nil {
		return fmt.Errorf("recording completion: %w", err)
	}

	if resp.Completion.DisplayValue != "" {
		cmd.Printf("Recorded: %s\n", resp.Completion.DisplayValue)
	} else {
		cmd.Println("Recorded.")
	}
	if !resp.CountersUpdated {
		cmd.Printf("Warning: %s\n", resp.Warning)
		return nil
	}
	if resp.Participant != nil {
		cmd.Printf("Current streak: %d (longest %d, total %d)\n",
			resp.Participant.CurrentStreak, resp.Participant.LongestStreak,
			resp.Participant.TotalCompletions)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
