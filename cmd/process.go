// =============================================================================
// ColorMe to Yayoi Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which writes the Yayoi sales
// slip import file.
//
// COMMAND USAGE:
//   yayoi-converter process --orders sales_all.csv --doc-start 120 [flags]
//
// FLAGS:
//   --orders             : ColorMe order export (required)
//   --doc-start          : First document number (required)
//   --operator           : Operator code, overrides the configuration
//   --select             : Sales IDs to convert (default: all)
//   --ledger             : Yayoi customer list replacing the stored ledger
//   --allow-unregistered : Convert even if new customers are unregistered
//   --date               : Document date (YYYYMMDD, default: today)
//   --dry-run            : Report without writing files
//
// PROCESSING PIPELINE:
//   1. Validate the settings
//   2. Parse the orders and match them against the ledger
//   3. Refuse to continue while new customers are unregistered
//   4. Encode the sales rows and write the Shift_JIS TXT
//   5. Write the run summary, archive the order export
//
// =============================================================================

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var processOpts converter.Options

// documentDate is the --date flag value.
var documentDate string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert orders into the Yayoi sales slip TXT",
	Long: `The process command converts the order export into a Yayoi Sales
売上伝票 import file (59 tab-separated columns, CRLF, Shift_JIS).

Each order becomes one slip. Bundle products are expanded into their
components; shipping, cash-on-delivery fee and discount rows are added.

Every buyer must exist in the customer ledger. Run 'match' and 'register'
first, or pass --allow-unregistered to use the reserved codes anyway.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processOpts.OrdersPath, "orders", "", "ColorMe order export (CSV)")
	processCmd.Flags().StringVar(&processOpts.DocumentNumberStart, "doc-start", "", "First document number (伝票番号)")
	processCmd.Flags().StringVar(&processOpts.OperatorCode, "operator", "", "Operator code (担当者コード)")
	processCmd.Flags().StringSliceVar(&processOpts.SelectSalesIDs, "select", nil, "Sales IDs to convert (comma separated)")
	processCmd.Flags().StringVar(&processOpts.LedgerPath, "ledger", "", "Yayoi customer list (CSV) replacing the stored ledger")
	processCmd.Flags().BoolVar(&processOpts.AllowUnregistered, "allow-unregistered", false, "Convert even if new customers are not registered")
	processCmd.Flags().StringVar(&documentDate, "date", "", "Document date YYYYMMDD (default: today)")
	processCmd.Flags().BoolVar(&processOpts.DryRun, "dry-run", false, "Simulate processing without writing output files")

	_ = processCmd.MarkFlagRequired("orders")
}

// =============================================================================
// PROCESS IMPLEMENTATION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	ctx := cmd.Context()

	if documentDate != "" {
		date, err := time.ParseInLocation("20060102", documentDate, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", documentDate, err)
		}
		processOpts.Date = date
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	conv, err := newConverter(store)
	if err != nil {
		return err
	}

	result, err := conv.Process(ctx, processOpts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "================================================================================")
	fmt.Fprintln(out, "PROCESSING SUMMARY")
	fmt.Fprintln(out, "================================================================================")
	fmt.Fprintf(out, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(out, "Orders:          %d\n", result.SelectedOrders)
	fmt.Fprintf(out, "Sales rows:      %d\n", result.SalesRows)
	if result.SalesPath != "" {
		fmt.Fprintf(out, "Sales TXT:       %s\n", result.SalesPath)
	}
	if result.RegistrationPath != "" {
		fmt.Fprintf(out, "Registration TXT: %s\n", result.RegistrationPath)
	}
	if result.ArchivePath != "" {
		fmt.Fprintf(out, "Archived input:  %s\n", result.ArchivePath)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "WARNING: %s\n", w)
	}
	if processOpts.DryRun {
		fmt.Fprintln(out, "(dry run, no files written)")
	}

	return nil
}
