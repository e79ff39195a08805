package cmd

import (
	"fmt"

	"github.com/brk3/arena/internal/apiclient"
	"github.com/spf13/cobra"
)

var listBrowse bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List arenas",
	Long: `The "list" command shows the arenas you participate in. With --browse it
shows all public arenas instead, marking the ones you can join.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return list(cmd)
	},
}

func list(cmd *cobra.Command) error {
	client := apiclient.New(cfg.APIBaseURL, cfg.AuthToken)
	resp, err := client.ListArenas(cmd.Context(), listBrowse)
	if err != nil {
		return fmt.Errorf("fetching arenas: %w", err)
	}

	if len(resp.Arenas) == 0 {
		cmd.Println("No arenas found.")
		return nil
	}
	for _, a := range resp.Arenas {
		marker := " "
		switch {
		case a.IsJoinedByUser:
			marker = "*"
		case a.CanJoin:
			marker = "+"
		}
		cmd.Printf("%s %-36s  %-24s  %d participants", marker, a.ID, a.Title, a.ParticipantCount)
		if a.IsJoinedByUser && a.UserStreak > 0 {
			cmd.Printf("  (streak %d)", a.UserStreak)
		}
		cmd.Println()
	}
	return nil
}

func init() {
	listCmd.Flags().BoolVar(&listBrowse, "browse", false, "show all public arenas")
	rootCmd.AddCommand(listCmd)
}
