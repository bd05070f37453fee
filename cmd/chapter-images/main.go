// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the chapter-images CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the chapter-images CLI.
var rootCmd = &cobra.Command{
	Use:   "chapter-images",
	Short: "Download chapter title SVGs and convert them to PNG",
	Long: `chapter-images downloads the 114 chapter title images as SVG files, one
request at a time with a short pause in between, and rasterizes each one to
PNG next to it.

Settings come from flags, CHAPTER_IMAGES_* environment variables, or a
chapter-images.yaml config file, in that order of precedence.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./chapter-images.yaml or ~/.config/chapter-images/chapter-images.yaml)")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("chapter-images")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "chapter-images"))
		}
	}

	viper.SetEnvPrefix("CHAPTER_IMAGES")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds every flag of cmd to the viper key of the same name with
// dashes turned into underscores ("svg-dir" -> "svg_dir"). Commands share
// keys, so binding happens when a command runs rather than at init.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" {
			return
		}
		err = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
