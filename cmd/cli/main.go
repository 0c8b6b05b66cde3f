package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/fxledger/internal/adapter/http/dto"
)

type options struct {
	baseURL    string
	timeout    time.Duration
	maxElapsed time.Duration
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "fxledger-cli",
		Short:         "fxledger CLI tool",
		Long:          `A command line interface for interacting with the fxledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("FXLEDGER_URL", "http://localhost:8080"), "Base URL of the fxledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per-attempt request timeout")
	rootCmd.PersistentFlags().DurationVar(&opts.maxElapsed, "retry-max-elapsed", 15*time.Second, "Give up retrying transient failures after this long")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Report retries on stderr")

	rootCmd.AddCommand(
		newDepositCmd(opts),
		newTransferCmd(opts),
		newConvertCmd(opts),
		newBalanceCmd(opts),
		newRatesCmd(opts),
		newReconcileCmd(opts),
	)

	return rootCmd
}

func (o *options) client(cmd *cobra.Command) *apiClient {
	c := newAPIClient(strings.TrimRight(o.baseURL, "/"), o.timeout, o.maxElapsed)
	if o.verbose {
		c.onRetry = func(err error, wait time.Duration) {
			fmt.Fprintf(cmd.ErrOrStderr(), "retrying in %s: %v\n", wait.Round(time.Millisecond), err)
		}
	}
	return c
}

func newDepositCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account-number> <amount>",
		Short: "Deposit funds into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account dto.AccountResponse
			req := dto.DepositRequest{AccountNumber: args[0], Amount: args[1]}
			if err := opts.client(cmd).do(cmd.Context(), http.MethodPost, "/api/v1/bank/deposit", req, &account); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}
}

func newTransferCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from-account> <to-account> <amount>",
		Short: "Transfer funds between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record dto.TransactionResponse
			req := dto.TransferRequest{FromAccountNumber: args[0], ToAccountNumber: args[1], Amount: args[2]}
			if err := opts.client(cmd).do(cmd.Context(), http.MethodPost, "/api/v1/bank/transfer", req, &record); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func newConvertCmd(opts *options) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "convert <from-account> <to-account> <amount>",
		Short: "Convert currency between two accounts of one user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record dto.TransactionResponse
			req := dto.ConvertRequest{FromAccountNumber: args[0], ToAccountNumber: args[1], Amount: args[2]}
			path := fmt.Sprintf("/api/v1/bank/users/%d/convert", userID)
			if err := opts.client(cmd).do(cmd.Context(), http.MethodPost, path, req, &record); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), record)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "ID of the user owning both accounts")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newBalanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <user-id>",
		Short: "Show a user's total balance in the reference currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			var total dto.TotalBalanceResponse
			path := fmt.Sprintf("/api/v1/bank/users/%d/total-balance", userID)
			if err := opts.client(cmd).do(cmd.Context(), http.MethodGet, path, nil, &total); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), total)
		},
	}
}

func newRatesCmd(opts *options) *cobra.Command {
	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Exchange rate operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List exchange rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rates dto.ListRatesResponse
			if err := opts.client(cmd).do(cmd.Context(), http.MethodGet, "/api/v1/rates", nil, &rates); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rates)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <currency> <rate>",
		Short: "Set a currency's rate to the reference currency",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rate dto.RateResponse
			path := "/api/v1/rates/" + strings.ToUpper(args[0])
			if err := opts.client(cmd).do(cmd.Context(), http.MethodPut, path, dto.SetRateRequest{Rate: args[1]}, &rate); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rate)
		},
	}

	ratesCmd.AddCommand(listCmd, setCmd)
	return ratesCmd
}

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every balance against the transaction log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report dto.ReconciliationReportResponse
			if err := opts.client(cmd).do(cmd.Context(), http.MethodGet, "/api/v1/ledger/reconciliation", nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Discrepancies) == 0 {
				fmt.Fprintf(out, "Reconciliation PASSED (%d accounts)\n", report.TotalAccounts)
				return nil
			}

			fmt.Fprintf(out, "Reconciliation FAILED: %d of %d accounts differ\n",
				len(report.Discrepancies), report.TotalAccounts)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s %s recorded=%s expected=%s diff=%s\n",
					truncate(d.AccountNumber, 40), d.Currency, d.RecordedBalance, d.ExpectedBalance, d.Difference)
			}
			return fmt.Errorf("%d accounts out of balance", len(report.Discrepancies))
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
