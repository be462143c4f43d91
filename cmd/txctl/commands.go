package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fastprodman/mmog-microtx/internal/repos/transactions"
	"github.com/fastprodman/mmog-microtx/internal/services/purchase"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// operator is what the commands need from the purchase service.
type operator interface {
	StalePending(ctx context.Context, olderThan time.Duration, limit int) ([]transactions.Transaction, error)
	Refund(ctx context.Context, transactionID uuid.UUID) (transactions.Transaction, error)
	Lookup(ctx context.Context, transactionID uuid.UUID) (transactions.Transaction, error)
}

var _ operator = (*purchase.Service)(nil)

type connectFunc func(ctx context.Context) (operator, error)

func newRootCmd(connect connectFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "txctl",
		Short:         "Operator tooling for microtransaction reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(pendingCmd(connect))
	root.AddCommand(showCmd(connect))
	root.AddCommand(refundCmd(connect))

	return root
}

func pendingCmd(connect connectFunc) *cobra.Command {
	var (
		olderThan time.Duration
		limit     int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List Pending purchases older than a threshold",
		Long: `List purchases still Pending after the threshold. These are charges whose
outcome was never recorded and need reconciliation against the processor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			records, err := op.StalePending(cmd.Context(), olderThan, limit)
			if err != nil {
				return fmt.Errorf("list pending: %w", err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}

			return writeTable(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 15*time.Minute, "Minimum age of a Pending record")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum records")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func showCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <transaction_id>",
		Short: "Print one transaction as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}

			op, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			tx, err := op.Lookup(cmd.Context(), id)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), tx)
		},
	}
}

func refundCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "refund <transaction_id>",
		Short: "Refund a Completed purchase in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid transaction id %q: %w", args[0], err)
			}

			op, err := connect(cmd.Context())
			if err != nil {
				return err
			}

			tx, err := op.Refund(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("refund: %w", err)
			}

			return writeJSON(cmd.OutOrStdout(), tx)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func writeTable(w io.Writer, records []transactions.Transaction) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no pending transactions")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANSACTION\tPLAYER\tITEM\tAMOUNT\tAGE")

	now := time.Now()
	for _, tx := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d %s\t%s\n",
			tx.TransactionID, tx.PlayerID, tx.ItemID,
			tx.TotalCents(), tx.Currency,
			now.Sub(tx.CreatedAt).Round(time.Second),
		)
	}

	return tw.Flush()
}
