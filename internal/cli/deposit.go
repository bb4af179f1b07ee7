package cli

import (
	"github.com/spf13/cobra"
)

func newDepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Balance deposit commands",
	}

	cmd.AddCommand(newDepositCreateCmd())
	cmd.AddCommand(newDepositConfirmCmd())
	cmd.AddCommand(newDepositStatusCmd())

	return cmd
}

func newDepositCreateCmd() *cobra.Command {
	var amount int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a checkout session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{"amount": amount}
			var result Checkout

			if err := client.Post("/api/v1/payments/checkout", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&amount, "amount", 0, "Deposit amount (required)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// confirm plays the provider's webhook, useful against dev servers where no
// real payment provider is wired up
func newDepositConfirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <checkout-id>",
		Short: "Confirm a checkout session (dev only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"checkout_id": args[0]}
			var result Checkout

			if err := client.Post("/api/v1/payments/webhook", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDepositStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <checkout-id>",
		Short: "Show a checkout session's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Checkout

			if err := client.Get("/api/v1/payments/checkout/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
