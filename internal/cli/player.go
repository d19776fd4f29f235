package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/zn-har/Bingo/internal/api/response"
)

func newRegisterCmd() *cobra.Command {
	var name, phone string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a player (or look up the player holding the phone number)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || phone == "" {
				return fmt.Errorf("--name and --phone are required")
			}

			req := map[string]string{"name": name, "phone": phone}
			var result response.RegisterResponse

			if err := client.Post("/api/v1/players", req, &result); err != nil {
				return err
			}

			// Save the player as the default scanner
			if err := cfg.SavePlayer(result.Player.ID); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&phone, "phone", "", "10-digit phone number (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player commands; the ID defaults to the saved player",
	}

	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerBoardCmd())
	cmd.AddCommand(newPlayerScansCmd())
	cmd.AddCommand(newPlayerQRCmd())

	return cmd
}

func playerPath(id, suffix string) string {
	return "/api/v1/players/" + url.PathEscape(id) + suffix
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a player",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}

			var result response.Player
			if err := client.Get(playerPath(id, ""), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board [id]",
		Short: "Show a player's board and progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}

			var result response.Board
			if err := client.Get(playerPath(id, "/board"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerScansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scans [id]",
		Short: "List the scans a player made, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}

			var result []response.Scan
			if err := client.Get(playerPath(id, "/scans"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPlayerQRCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "qr [id]",
		Short: "Download a player's QR code as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := playerArg(args)
			if err != nil {
				return err
			}

			png, err := client.GetRaw(playerPath(id, "/qr.png"))
			if err != nil {
				return err
			}

			if err := os.WriteFile(out, png, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			output(cmd).PrintMessage(fmt.Sprintf("QR code written to %s", out))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "qr.png", "Output file")

	return cmd
}
