package cmd

import (
	"fmt"
	"time"

	"github.com/brk3/arena/internal/remind"
	"github.com/brk3/arena/internal/remind/resend"
	"github.com/spf13/cobra"
)

var remindThreshold int

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Email participants whose streaks expire within a certain window",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ResendAPIKey == "" {
			return fmt.Errorf("resend_api_key is not set in config")
		}
		if cfg.ReminderFrom == "" {
			return fmt.Errorf("reminder_from is not set in config")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		n := &resend.ResendNotifier{
			ApiKey: cfg.ResendAPIKey,
			From:   cfg.ReminderFrom,
		}
		return remind.Run(cmd.Context(), st, n, time.Duration(remindThreshold)*time.Hour)
	},
}

func init() {
	remindCmd.Flags().IntVar(&remindThreshold, "threshold", 2, "hours until streak expiry")
	rootCmd.AddCommand(remindCmd)
}
