// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chapter-images/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show the chapters recorded by earlier fetch runs",
	Long: `Ledger prints the SQLite run ledger written by "fetch --ledger": one row per
chapter with its HTTP status, byte count and conversion state.`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("ledger")
		if path == "" {
			return fmt.Errorf("no ledger configured; pass --ledger or set ledger in the config file")
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("ledger %s: %w", path, err)
		}

		store, err := ledger.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return store.ExportYAML(cmd.Context(), cmd.OutOrStdout())
		}

		chapters, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CHAPTER\tSTATUS\tBYTES\tCONVERTED\tFETCHED")
		for _, ch := range chapters {
			fmt.Fprintf(tw, "%03d\t%d\t%d\t%t\t%s\n",
				ch.Index, ch.StatusCode, ch.Bytes, ch.Converted, ch.FetchedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

func init() {
	ledgerCmd.Flags().String("ledger", "", "SQLite ledger file")
	ledgerCmd.Flags().Bool("yaml", false, "print the ledger as YAML")

	rootCmd.AddCommand(ledgerCmd)
}
