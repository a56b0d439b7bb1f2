package cmd

import (
	"fmt"
	"sort"

	"github.com/joelyuhas/papertrader/account"
	"github.com/joelyuhas/papertrader/market"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print an account's last saved state",
	Long: `Reload an account from its latest snapshot and print its cash,
positions and total valuation.

Example:
  papertrader status --number 1234 --dir ./accounts`,
	RunE: runStatus,
}

var (
	statusNumber string
	statusDir    string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusNumber, "number", "n", "", "account number (required)")
	statusCmd.Flags().StringVarP(&statusDir, "dir", "d", "accounts", "directory for account files")
	statusCmd.MarkFlagRequired("number")
}

func runStatus(cmd *cobra.Command, args []string) error {
	src := market.NewReplaySource(nil)

	acct := account.New(statusNumber, statusDir, src)
	defer acct.Close()

	if err := acct.Reload(); err != nil {
		return fmt.Errorf("reload account: %w", err)
	}

	fmt.Printf("Account %s\n", acct.Number)
	fmt.Printf("  Cash:  $%.2f\n", acct.Cash)

	tickers := make([]string, 0, len(acct.Positions))
	for t := range acct.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		pos := acct.Positions[t]
		fmt.Printf("  %-6s %10.4f shares @ $%.2f  (value $%.2f, trend %s)\n",
			pos.Ticker, pos.Quantity, pos.LastPrice, pos.MarketValue(), pos.Trend)
	}

	fmt.Printf("  Total: $%.2f\n", acct.Valuation())
	return nil
}
