package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zn-har/Bingo/internal/api/request"
	"github.com/zn-har/Bingo/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game-state commands",
	}

	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameUpdateCmd())

	return cmd
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show whether the game is active and how many players have won",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState

			if err := client.Get("/api/v1/game-state", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameUpdateCmd() *cobra.Command {
	var active, allowDuplicates bool
	var maxWinners int

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Override the game state (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.UpdateGameStateRequest
			if cmd.Flags().Changed("active") {
				req.GameActive = &active
			}
			if cmd.Flags().Changed("max-winners") {
				req.MaxWinners = &maxWinners
			}
			if cmd.Flags().Changed("allow-duplicate-targets") {
				req.AllowDuplicateTargets = &allowDuplicates
			}
			if req.IsEmpty() {
				return fmt.Errorf("set at least one of --active, --max-winners, --allow-duplicate-targets")
			}

			var result response.GameState
			if err := client.Patch("/api/v1/game-state", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", true, "Whether scans are accepted")
	cmd.Flags().IntVar(&maxWinners, "max-winners", 0, "Distinct winners that end the game")
	cmd.Flags().BoolVar(&allowDuplicates, "allow-duplicate-targets", true, "Whether a player may scan the same person for several tasks")

	return cmd
}

func newWinnersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "winners",
		Short: "List recorded wins, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Winner

			if err := client.Get("/api/v1/winners", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the board's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Task

			if err := client.Get("/api/v1/tasks", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
