package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	reviewPath     string
	registerDryRun bool
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Add the customers marked as registered to the ledger",
	Long: `register reads the 新規顧客 sheet of a review workbook and appends every
candidate marked in the 登録済 column to the stored customer ledger.

Run it after importing the registration TXT into Yayoi.`,
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

		added, err := conv.Register(ctx, reviewPath, registerDryRun)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %d customer(s) to the ledger\n", added)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVar(&reviewPath, "review", "", "Review workbook written by match")
	registerCmd.Flags().BoolVar(&registerDryRun, "dry-run", false, "Report without saving the ledger")
	_ = registerCmd.MarkFlagRequired("review")
}
