// =============================================================================
// ColorMe to Yayoi Converter - Ledger Command
// =============================================================================
//
// The 'ledger' command group maintains the stored customer ledger
// (得意先台帳) that orders are matched against.
//
// COMMAND USAGE:
//   yayoi-converter ledger import customers.csv
//   yayoi-converter ledger import --json yayoi_storage_20251201.json
//   yayoi-converter ledger show
//   yayoi-converter ledger export [--out file.json | --out -]
//   yayoi-converter ledger clear
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/colorme-yayoi-converter/internal/matcher"
	"github.com/ginjaninja78/colorme-yayoi-converter/internal/storage"
	"github.com/ginjaninja78/colorme-yayoi-converter/pkg/utils"
)

// exportFileFormat names backup files written by 'ledger export'.
const exportFileFormat = "yayoi_storage_{date}.json"

var (
	importJSON bool
	exportOut  string
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Maintain the stored customer ledger",
}

// =============================================================================
// IMPORT
// =============================================================================

var ledgerImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored ledger with a Yayoi customer CSV or a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !utils.FileExists(args[0]) {
			return fmt.Errorf("ledger file not found: %s", args[0])
		}

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if importJSON {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open backup: %w", err)
			}
			defer f.Close()

			snapshot, err := store.Import(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d customer(s) from backup of %s\n", len(snapshot.Customers), snapshot.Timestamp)
			return nil
		}

		conv, err := newConverter(store)
		if err != nil {
			return err
		}
		customers, err := conv.ImportLedgerCSV(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d customer(s)\n", len(customers))
		return nil
	},
}

// =============================================================================
// SHOW
// =============================================================================

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of the stored ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		snapshot, err := store.Load(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintln(out, "No customer ledger stored. Run 'ledger import' first.")
			return nil
		}
		if err != nil {
			return err
		}

		maxCode := matcher.MaxCustomerCode(snapshot.Customers)
		fmt.Fprintf(out, "Version:    %s\n", snapshot.Version)
		fmt.Fprintf(out, "Saved:      %s\n", snapshot.Timestamp)
		fmt.Fprintf(out, "Customers:  %d\n", len(snapshot.Customers))
		fmt.Fprintf(out, "Max code:   %s\n", matcher.FormatCode(maxCode))
		fmt.Fprintf(out, "Next code:  %s\n", matcher.FormatCode(maxCode+1))
		return nil
	},
}

// =============================================================================
// EXPORT
// =============================================================================

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored ledger as a JSON backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if exportOut == "-" {
			return store.Export(ctx, cmd.OutOrStdout())
		}

		path := exportOut
		if path == "" {
			path = filepath.Join(mainConfig.OutputDir, utils.GenerateOutputFileName(exportFileFormat, time.Now(), nil))
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		if err := store.Export(ctx, f); err != nil {
			f.Close()
			os.Remove(path)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported ledger to %s\n", path)
		return nil
	},
}

// =============================================================================
// CLEAR
// =============================================================================

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Customer ledger cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerImportCmd, ledgerShowCmd, ledgerExportCmd, ledgerClearCmd)

	ledgerImportCmd.Flags().BoolVar(&importJSON, "json", false, "Treat the file as a JSON backup written by 'ledger export'")
	ledgerExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Destination file, '-' for stdout (default: output dir)")
}
