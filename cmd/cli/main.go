package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by all commands.
type options struct {
	baseURL string
	token   string
	timeout time.Duration
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
		Use:           "ledger-cli",
		Short:         "Transfer ledger CLI tool",
		Long:          `A command line interface for the transfer ledger API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LEDGER_TOKEN"), "Bearer token for the ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd(opts))

	rootCmd.AddCommand(
		balanceCmd(opts),
		transferCmd(opts),
		ledgerCmd,
		migrateCmd(),
		seedCmd(),
		tokenCmd(),
	)

	return rootCmd
}
