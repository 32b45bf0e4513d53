package cli

import (
	"github.com/spf13/cobra"
)

func newLongestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "longest",
		Short: "Longest word commands",
	}

	cmd.AddCommand(newLongestSubmitCmd())
	cmd.AddCommand(newLongestGetCmd())
	cmd.AddCommand(newLongestTopCmd())

	return cmd
}

func newLongestSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <word>",
		Short: "Submit a candidate longest word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"word": args[0]}
			var result SubmitLongestWord

			if err := client.Post("/api/v1/longest-word", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLongestGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your longest word",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LongestWord

			if err := client.Get("/api/v1/longest-word", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newLongestTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the longest words",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TopWords

			if err := client.Get(withLimit("/api/v1/longest-word/top", limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	addLimitFlag(cmd, &limit)
	return cmd
}
