// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/chapter-images/internal/convert"
	"github.com/pdiddy/chapter-images/pkg/types"
)

// addLayoutFlags registers the flags that decide which chapters are touched
// and where their files live.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Int("first", types.DefaultFirst, "first chapter to process")
	cmd.Flags().Int("last", types.DefaultLast, "last chapter to process")
	cmd.Flags().String("svg-dir", types.DefaultSVGDir, "directory for downloaded SVGs")
	cmd.Flags().String("png-dir", types.DefaultPNGDir, "directory for converted PNGs")
}

// addConversionFlags registers the rasterizer flags.
func addConversionFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", string(types.BackendNative), "conversion backend: native or container")
	cmd.Flags().Float64("scale", 1, "PNG size as a multiple of the SVG viewBox")
	cmd.Flags().Bool("strict", false, "fail on SVG elements the native backend does not support")
	cmd.Flags().String("image", convert.DefaultImage, "rsvg-convert image for the container backend")
}

// setDefaults registers a default for every key read by loadFetchConfig and
// loadConversionConfig, so a command without the matching flag still sees
// the stock value.
func setDefaults() {
	def := types.DefaultFetchConfig()
	viper.SetDefault("base_url", def.BaseURL)
	viper.SetDefault("first", def.First)
	viper.SetDefault("last", def.Last)
	viper.SetDefault("delay", def.Delay)
	viper.SetDefault("svg_dir", def.SVGDir)
	viper.SetDefault("png_dir", def.PNGDir)
	viper.SetDefault("timeout", def.Timeout)
	viper.SetDefault("max_retries", def.MaxRetries)
	viper.SetDefault("backend", string(types.BackendNative))
	viper.SetDefault("scale", 1.0)
	viper.SetDefault("image", convert.DefaultImage)
}

func loadFetchConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("timeout"),
			UserAgent:  viper.GetString("user_agent"),
			MaxRetries: viper.GetInt("max_retries"),
		},
		BaseURL:          viper.GetString("base_url"),
		First:            viper.GetInt("first"),
		Last:             viper.GetInt("last"),
		Delay:            viper.GetDuration("delay"),
		SVGDir:           viper.GetString("svg_dir"),
		PNGDir:           viper.GetString("png_dir"),
		LegacySourcePath: viper.GetBool("legacy_source_path"),
		SkipConvert:      viper.GetBool("skip_convert"),
		Ledger:           viper.GetString("ledger"),
	}
}

func loadConversionConfig() types.ConversionConfig {
	return types.ConversionConfig{
		Backend: types.ConversionBackend(viper.GetString("backend")),
		Scale:   viper.GetFloat64("scale"),
		Strict:  viper.GetBool("strict"),
		Image:   viper.GetString("image"),
	}
}

// newHTTPClient returns a client with the configured timeout. Zero keeps
// the client without a timeout; redirects use net/http's default policy.
func newHTTPClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
