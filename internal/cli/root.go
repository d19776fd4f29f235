package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bingoctl",
		Short: "CLI tool for the festival bingo API",
		Long: `bingoctl is a CLI tool for interacting with the festival bingo JSON API.

It covers player registration, boards, scanning other players' codes,
game-state administration, and live SSE event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load the saved player if not provided via flag/env
			if err := cfg.LoadPlayer(); err != nil {
				return err
			}

			var verbose io.Writer
			if cfg.Verbose {
				verbose = cmd.ErrOrStderr()
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, verbose)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BINGO_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "Player ID used as the default scanner (env: BINGO_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerFile, "player-file", cfg.PlayerFile, "Saved player file path (env: BINGO_PLAYER_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newWinnersCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// output returns a formatter writing to the command's streams
func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

var errNoPlayer = errors.New("no player given: pass an ID, use --player, or register first")

// playerArg returns the explicit player argument or the saved player
func playerArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.PlayerID != "" {
		return cfg.PlayerID, nil
	}
	return "", errNoPlayer
}
