package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/converter"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/matcher"
)

var matchOpts converter.Options

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match orders against the customer ledger",
	Long: `match parses the order export, matches every buyer against the stored
customer ledger (e-mail, then phone, then name) and writes:

  - a review workbook listing every order and the new-customer candidates
  - the new-customer registration TXT for import into Yayoi

Pass --ledger to replace the stored ledger with a fresh Yayoi export first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		conv, err := newConverter(store)
		if err != nil {
			return err
		}

		result, err := conv.Match(ctx, matchOpts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Orders:            %d\n", len(result.Match.Orders))
		fmt.Fprintf(out, "Existing customers: %d\n", result.Match.ExistingCount)
		fmt.Fprintf(out, "New customers:     %d (%d distinct)\n", result.Match.NewCount, len(result.Match.Candidates))
		fmt.Fprintf(out, "Next customer code: %s\n", matcher.FormatCode(result.Match.NextCode))
		for _, c := range result.Match.Candidates {
			fmt.Fprintf(out, "  %s  %s  %s\n", c.AssignedCode, c.CustomerName, c.Email)
		}
		if result.ReviewPath != "" {
			fmt.Fprintf(out, "Review workbook:   %s\n", result.ReviewPath)
		}
		if result.RegistrationPath != "" {
			fmt.Fprintf(out, "Registration TXT:  %s\n", result.RegistrationPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchOpts.OrdersPath, "orders", "", "ColorMe order export (CSV)")
	matchCmd.Flags().StringVar(&matchOpts.LedgerPath, "ledger", "", "Yayoi customer list (CSV) replacing the stored ledger")
	matchCmd.Flags().BoolVar(&matchOpts.DryRun, "dry-run", false, "Match without writing files or saving the ledger")
	_ = matchCmd.MarkFlagRequired("orders")
}
