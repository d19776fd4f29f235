package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zn-har/Bingo/internal/api/response"
)

func newScanCmd() *cobra.Command {
	var scanner, target string
	var task int64

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Record a scan of another player's code for a task",
		Long: `Record that the scanner scanned the target's QR code for a task.

The scanner defaults to the saved player. Use "bingoctl tasks" to list task IDs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scanner == "" {
				scanner = cfg.PlayerID
			}
			if scanner == "" {
				return errNoPlayer
			}
			if target == "" || task == 0 {
				return fmt.Errorf("--target and --task are required")
			}

			req := map[string]any{
				"scanner_id": scanner,
				"target_id":  target,
				"task_id":    task,
			}
			var result response.ScanResult

			if err := client.Post("/api/v1/scans", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&scanner, "scanner", "", "Scanner player ID (default: saved player)")
	cmd.Flags().StringVar(&target, "target", "", "Scanned player ID (required)")
	cmd.Flags().Int64Var(&task, "task", 0, "Task ID (required)")

	cmd.AddCommand(newScanVerifyCmd())

	return cmd
}

func newScanVerifyCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "verify <scan-id>",
		Short: "Set a scan's verification status (pending, approved, rejected)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("scan id must be an integer: %w", err)
			}

			req := map[string]string{"status": status}
			var result response.Scan

			if err := client.Patch(fmt.Sprintf("/api/v1/scans/%d", id), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "approved", "Verification status")

	return cmd
}
