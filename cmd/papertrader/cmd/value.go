package cmd

import (
	"fmt"

	"github.com/joelyuhas/papertrader/account"
	"github.com/joelyuhas/papertrader/market"
	"github.com/spf13/cobra"
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Look up an account's end-of-day value N days back",
	Long: `Scan the account's snapshot history backwards for the end-of-day
total value recorded the given number of days ago.

Example:
  papertrader value --number 1234 --dir ./accounts --days-back 7`,
	RunE: runValue,
}

var (
	valueNumber   string
	valueDir      string
	valueDaysBack int
	valueNoRetry  bool
)

func init() {
	rootCmd.AddCommand(valueCmd)

	valueCmd.Flags().StringVarP(&valueNumber, "number", "n", "", "account number (required)")
	valueCmd.Flags().StringVarP(&valueDir, "dir", "d", "accounts", "directory for account files")
	valueCmd.Flags().IntVar(&valueDaysBack, "days-back", 1, "how many days back to look")
	valueCmd.Flags().BoolVar(&valueNoRetry, "no-retry", false, "do not retry after repairing a malformed snapshot file")
	valueCmd.MarkFlagRequired("number")
}

func runValue(cmd *cobra.Command, args []string) error {
	src := market.NewReplaySource(nil)

	acct := account.New(valueNumber, valueDir, src)
	defer acct.Close()

	value, at, err := acct.ValueAsOf(valueDaysBack, !valueNoRetry)
	if err != nil {
		return fmt.Errorf("value %d days back: %w", valueDaysBack, err)
	}

	fmt.Printf("Account %s was worth $%.2f at %s (%d days back)\n",
		valueNumber, value, at.Format("2006-01-02 15:04:05"), valueDaysBack)
	return nil
}
