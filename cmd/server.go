package cmd

import (
	"net/http"

	"github.com/brk3/arena/internal/cache"
	"github.com/brk3/arena/internal/logger"
	"github.com/brk3/arena/internal/server"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func startServer(cmd *cobra.Command) error {
	logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogJSON)

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var c cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		c, err = cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer c.Close()
	}

	s, err := server.New(st, c, cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting server", "addr", cfg.ListenAddr, "driver", cfg.Storage.Driver)
	return http.ListenAndServe(cfg.ListenAddr, s.Router())
}
