// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chapter-images/internal/convert"
	"github.com/pdiddy/chapter-images/internal/fetch"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert already-downloaded chapter SVGs to PNG",
	Long: `Convert rasterizes <svg-dir>/chapter_NNN.svg files left by an earlier fetch
without touching the network. Missing SVGs are skipped, as are chapters
that already have a PNG unless --overwrite is given.`,
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd) },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadFetchConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		conv, err := convert.New(loadConversionConfig())
		if err != nil {
			return err
		}

		chapters := fetch.LayoutFor(cfg).Chapters(cfg.First, cfg.Last)
		result := convert.ConvertBatch(conv, chapters, viper.GetBool("overwrite"), os.Stdout)
		if result.HasFailures() {
			return fmt.Errorf("%d chapter(s) failed conversion", result.Failed)
		}
		return nil
	},
}

func init() {
	addLayoutFlags(convertCmd)
	addConversionFlags(convertCmd)
	convertCmd.Flags().Bool("overwrite", false, "re-convert chapters that already have a PNG")

	rootCmd.AddCommand(convertCmd)
}
