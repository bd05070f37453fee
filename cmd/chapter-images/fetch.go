// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/chapter-images/internal/convert"
	"github.com/pdiddy/chapter-images/internal/fetch"
	"github.com/pdiddy/chapter-images/internal/ledger"
	"github.com/pdiddy/chapter-images/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download every chapter SVG and convert it to PNG",
	Long: `Fetch requests <base-url>NNN.svg for each chapter in order, saves the body
to <svg-dir>/chapter_NNN.svg whatever the HTTP status, converts it to
<png-dir>/chapter_NNN.png and waits --delay before the next request.

The first failure stops the run with a non-zero exit. Files written before
the failure are kept.`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE:    runFetch,
}

func init() {
	addLayoutFlags(fetchCmd)
	addConversionFlags(fetchCmd)
	fetchCmd.Flags().String("base-url", types.DefaultBaseURL, "URL prefix the NNN.svg names are appended to")
	fetchCmd.Flags().Duration("delay", types.DefaultDelay, "delay between consecutive requests")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (0 disables)")
	fetchCmd.Flags().String("user-agent", "", "User-Agent header (default: Go's)")
	fetchCmd.Flags().Int("max-retries", 0, "retries on HTTP 429 with exponential backoff (0 disables)")
	fetchCmd.Flags().Bool("legacy-source-path", false, "convert from <svg-dir>/NNN.svg like the original script")
	fetchCmd.Flags().Bool("skip-convert", false, "download SVGs only")
	fetchCmd.Flags().String("ledger", "", "SQLite file recording each fetched chapter (disabled when empty)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadFetchConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	var conv convert.Converter
	if !cfg.SkipConvert {
		c, err := convert.New(loadConversionConfig())
		if err != nil {
			return err
		}
		conv = c
	}

	var rec fetch.Recorder
	if cfg.Ledger != "" {
		store, err := ledger.Open(cfg.Ledger)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	_, err := fetch.Run(cmd.Context(), newHTTPClient(cfg.HTTPConfig), conv, cfg, rec, os.Stdout)
	return err
}
