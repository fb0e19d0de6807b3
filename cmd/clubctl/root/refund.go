package root

import (
	"errors"
	"fmt"

	"upvote-club/services"

	"github.com/spf13/cobra"
)

func newRefundCmd() *cobra.Command {
	var required, completed int
	var price int64

	cmd := &cobra.Command{
		Use:   "refund",
		Short: "Preview the refund and per-action reward for a task shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if required < 0 || completed < 0 || price < 0 {
				return errors.New("values must not be negative")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "refund: %s\n", services.RefundFor(required, completed, price))
			fmt.Fprintf(out, "reward per action: %s\n", services.RewardPerAction(price*int64(required), required))
			return nil
		},
	}

	cmd.Flags().IntVar(&required, "required", 0, "actions_required")
	cmd.Flags().IntVar(&completed, "completed", 0, "actions_completed")
	cmd.Flags().Int64Var(&price, "price", 0, "price per action")
	_ = cmd.MarkFlagRequired("required")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}
