package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/coachkit/quota"
	"github.com/jonwraymond/coachkit/store/sqlite"
	"github.com/jonwraymond/coachkit/tier"
)

func newQuotaCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Inspect and manage user quotas",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "coachkit.db", "path to the database")

	status := &cobra.Command{
		Use:   "status <user-id>",
		Short: "Show a user's monthly scenario usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = store.Close() }()

			rec, err := store.GetQuota(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			limit := quota.LimitFor(rec.Tier)
			limitStr := fmt.Sprintf("%d", limit)
			if limit == quota.Unlimited {
				limitStr = "unlimited"
			}
			fmt.Printf("user:       %s\n", rec.UserID)
			fmt.Printf("tier:       %s\n", rec.Tier)
			fmt.Printf("used:       %d/%s\n", rec.ScenariosAccessed, limitStr)
			fmt.Printf("last reset: %s\n", rec.LastReset.Format("2006-01-02"))
			return nil
		},
	}

	setTier := &cobra.Command{
		Use:   "set-tier <user-id> <free|basic|premium>",
		Short: "Change a user's subscription tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tier.Parse(args[1])
			if err != nil {
				return err
			}

			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.SetTier(cmd.Context(), args[0], t); err != nil {
				return err
			}
			fmt.Printf("user %s set to %s\n", args[0], t)
			return nil
		},
	}

	cmd.AddCommand(status, setTier)
	return cmd
}
