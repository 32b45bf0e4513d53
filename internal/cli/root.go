package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig(os.Getenv)

	rootCmd := &cobra.Command{
		Use:   "omnigram",
		Short: "CLI tool for the omnigram API",
		Long: `omnigram is a CLI tool for interacting with the omnigram JSON API.

It plays the daily puzzle and reads the leaderboards. The player token the
server returns is kept in the token file so your identity survives a change
of user agent.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.UserAgent)
			client.OnToken = func(token string) {
				if err := cfg.SaveToken(token); err != nil && cfg.Verbose {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to save token: %s\n", err)
				}
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: OMNIGRAM_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Player token (env: OMNIGRAM_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: OMNIGRAM_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User agent sent to the server (env: OMNIGRAM_USER_AGENT)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newLongestCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newStreakCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
