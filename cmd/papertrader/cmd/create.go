package cmd

import (
	"fmt"

	"github.com/joelyuhas/papertrader/account"
	"github.com/joelyuhas/papertrader/market"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	Long: `Create a new account directory with its snapshot and audit files,
optionally seeding it with an initial deposit.

Creating an account that already exists is a no-op; the existing files are
left untouched.

Example:
  papertrader create --number 1234 --dir ./accounts --deposit 1000`,
	RunE: runCreate,
}

var (
	createNumber  string
	createDir     string
	createDeposit float64
)

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createNumber, "number", "n", "", "account number (required)")
	createCmd.Flags().StringVarP(&createDir, "dir", "d", "accounts", "directory for account files")
	createCmd.Flags().Float64Var(&createDeposit, "deposit", 0, "initial cash deposit")
	createCmd.MarkFlagRequired("number")
}

func runCreate(cmd *cobra.Command, args []string) error {
	src := market.NewReplaySource(nil)

	acct := account.New(createNumber, createDir, src, account.WithLogger(log))
	defer acct.Close()

	created, err := acct.CreateIfAbsent()
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if !created {
		fmt.Printf("Account %s already exists in %s\n", createNumber, createDir)
		return nil
	}

	if createDeposit > 0 {
		if _, err := acct.Deposit(createDeposit); err != nil {
			return fmt.Errorf("initial deposit: %w", err)
		}
		if err := acct.PersistSnapshot(false); err != nil {
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}

	fmt.Printf("Created account %s\n", createNumber)
	fmt.Printf("  Snapshot: %s\n", acct.SnapshotPath())
	fmt.Printf("  Audit:    %s\n", acct.AuditPath())
	fmt.Printf("  Cash:     $%.2f\n", acct.Cash)
	return nil
}
