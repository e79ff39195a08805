package cmd

import (
	"fmt"
	"os"

	"github.com/brk3/arena/internal/config"
	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/internal/storage/bolt"
	"github.com/brk3/arena/internal/storage/mongo"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Run shared habit arenas with streaks and leaderboards",
	Long: `
	Arena tracks habit completions across groups of people. Participants log
	completions against a shared arena and compete on streaks, totals and
	averages via leaderboards and history tables.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// openStore opens the backend named by the storage config.
func openStore(cmd *cobra.Command) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "bolt", "":
		return bolt.Open(cfg.Storage.Path)
	case "mongo":
		return mongo.Open(cmd.Context(), cfg.Storage.URI, cfg.Storage.DBName)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
