package cli

import (
	"github.com/spf13/cobra"
)

func newStreakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Daily streak commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "record",
		Short: "Mark today as played",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Streak

			if err := client.Post("/api/v1/session", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show your streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Streak

			if err := client.Get("/api/v1/session/streak", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	return cmd
}
