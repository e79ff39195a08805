package cmd

import (
	"context"
	"time"

	"github.com/brk3/arena/internal/stats"
	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
	"github.com/spf13/cobra"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Recompute participant counters from completion history",
	Long: `The "migrate" command rebuilds every participant's streak and total
counters by rescanning their completion history, and refreshes each
arena's stored participant count. Run it after importing data or to
repair counter drift.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		return migrate(cmd, st)
	},
}

func migrate(cmd *cobra.Command, st storage.Store) error {
	ctx := cmd.Context()
	now := time.Now()

	arenas, err := st.ListArenas(ctx, storage.ArenaFilter{})
	if err != nil {
		return err
	}

	for i := range arenas {
		a := arenas[i]
		participants, err := st.ListParticipants(ctx, storage.ParticipantFilter{ArenaID: a.ID})
		if err != nil {
			return err
		}

		active := 0
		for j := range participants {
			p := participants[j]
			if p.Active {
				active++
			}
			if err := recomputeParticipant(ctx, cmd, st, &p, now); err != nil {
				return err
			}
		}

		if a.ParticipantCount != active {
			cmd.Printf("arena %s (%s): participant count %d -> %d\n",
				a.ID, a.Title, a.ParticipantCount, active)
			if !migrateDryRun {
				a.ParticipantCount = active
				if err := st.PutArena(ctx, &a); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func recomputeParticipant(ctx context.Context, cmd *cobra.Command, st storage.Store,
	p *arena.Participant, now time.Time) error {

	completions, truncated, err := st.ListCompletions(ctx, storage.CompletionFilter{
		ArenaID: p.ArenaID,
		UserID:  p.UserID,
	})
	if err != nil {
		return err
	}
	if truncated {
		cmd.Printf("warning: history for user %s in arena %s is truncated, totals may undercount\n",
			p.UserID, p.ArenaID)
	}

	total, current, longest := stats.Recompute(completions, now, p.LongestStreak)
	if total == p.TotalCompletions && current == p.CurrentStreak && longest == p.LongestStreak {
		return nil
	}

	cmd.Printf("user %s in arena %s: total %d -> %d, current %d -> %d, longest %d -> %d\n",
		p.UserID, p.ArenaID, p.TotalCompletions, total,
		p.CurrentStreak, current, p.LongestStreak, longest)
	if migrateDryRun {
		return nil
	}

	p.TotalCompletions = total
	p.CurrentStreak = current
	p.LongestStreak = longest
	if len(completions) > 0 {
		p.LastCompletedAt = completions[0].CompletedAt
	}
	return st.UpdateParticipant(ctx, p)
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "report changes without writing them")
	rootCmd.AddCommand(migrateCmd)
}
