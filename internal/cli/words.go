package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Per-game word count commands",
	}

	cmd.AddCommand(newWordsUpdateCmd())
	cmd.AddCommand(newWordsHighestCmd())
	cmd.AddCommand(newWordsTopCmd())

	return cmd
}

func newWordsUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <count>",
		Short: "Record the number of words found in a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount(args[0])
			if err != nil {
				return err
			}

			req := map[string]int{"word_count": count}
			var result WordCountUpdate

			if err := client.Post("/api/v1/game-words/update", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newWordsHighestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "highest",
		Short: "Show your highest word count",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HighestWordCount

			if err := client.Get("/api/v1/game-words/highest", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newWordsTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the highest word counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TopWordCounts

			if err := client.Get(withLimit("/api/v1/game-words/top", limit), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	addLimitFlag(cmd, &limit)
	return cmd
}

// parseCount reads a non-negative integer argument
func parseCount(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid word count %q", arg)
	}
	return n, nil
}
