package cli

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Daily omnigram puzzle commands",
	}

	cmd.AddCommand(newPlayCurrentCmd())
	cmd.AddCommand(newPlaySubmitCmd())
	cmd.AddCommand(newPlayTopCmd())

	return cmd
}

func newPlayCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show today's puzzle, starting it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlaySession

			if err := client.Get("/api/v1/play-session/current", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlaySubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <word>",
		Short: "Submit a word to today's puzzle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"word": args[0]}
			var result SubmitWordResult

			if err := client.Post("/api/v1/play-session/submit-word", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the best daily scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TopScores

			if err := client.Get(withLimit("/api/v1/play-session/top-scores", limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	addLimitFlag(cmd, &limit)
	return cmd
}

func addLimitFlag(cmd *cobra.Command, limit *int) {
	cmd.Flags().IntVar(limit, "limit", 0, "Number of entries (server default when unset)")
}

// withLimit appends ?limit= when limit is set
func withLimit(path string, limit int) string {
	if limit == 0 {
		return path
	}
	return path + "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
}
