// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"time"
)

// Defaults reproduce the behaviour of the original download script.
const (
	DefaultBaseURL = "https://salattimes.com/wp-content/uploads/2020/10/"
	DefaultFirst   = 1
	DefaultLast    = 114
	DefaultDelay   = 100 * time.Millisecond
	DefaultSVGDir  = "svgs"
	DefaultPNGDir  = "pngs"

	// MaxIndex is the largest index that still pads to three digits.
	MaxIndex = 999
)

// HTTPConfig holds shared HTTP settings used for network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Empty
	// leaves Go's default in place.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retry.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ConversionBackend identifies the SVG rasterizer.
type ConversionBackend string

const (
	BackendNative    ConversionBackend = "native"
	BackendContainer ConversionBackend = "container"
)

// ConversionConfig holds settings for SVG to PNG conversion.
type ConversionConfig struct {
	// Backend selects the rasterizer: native or container.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// Scale multiplies the SVG viewBox size to get the PNG size (default 1).
	Scale float64 `json:"scale" yaml:"scale"`

	// Strict fails conversion on SVG elements the native backend does not
	// support instead of skipping them.
	Strict bool `json:"strict" yaml:"strict"`

	// Image is the container image used by the container backend.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// FetchConfig holds settings for the fetch-and-convert run.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is prepended to "<NNN>.svg" to build each source URL.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// First and Last bound the chapter range, inclusive.
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`

	// Delay is the pause between consecutive requests (default 100ms).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// SVGDir and PNGDir are the output directories.
	SVGDir string `json:"svg_dir" yaml:"svg_dir"`
	PNGDir string `json:"png_dir" yaml:"png_dir"`

	// LegacySourcePath makes conversion read "<svg_dir>/<NNN>.svg" instead
	// of the file just downloaded, as the original script did.
	LegacySourcePath bool `json:"legacy_source_path" yaml:"legacy_source_path"`

	// SkipConvert downloads the SVGs without rasterizing them.
	SkipConvert bool `json:"skip_convert" yaml:"skip_convert"`

	// Ledger is the path of the SQLite run ledger. Empty disables it.
	Ledger string `json:"ledger,omitempty" yaml:"ledger,omitempty"`
}

// DefaultFetchConfig returns the configuration of the original script.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		BaseURL: DefaultBaseURL,
		First:   DefaultFirst,
		Last:    DefaultLast,
		Delay:   DefaultDelay,
		SVGDir:  DefaultSVGDir,
		PNGDir:  DefaultPNGDir,
	}
}

// Validate reports the first problem with the configuration, if any.
func (c FetchConfig) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base URL is empty")
	case c.First < 1:
		return fmt.Errorf("first chapter %d is below 1", c.First)
	case c.Last > MaxIndex:
		return fmt.Errorf("last chapter %d does not fit three digits", c.Last)
	case c.First > c.Last:
		return fmt.Errorf("first chapter %d is after last chapter %d", c.First, c.Last)
	case c.Delay < 0:
		return fmt.Errorf("negative delay %v", c.Delay)
	case c.SVGDir == "" || c.PNGDir == "":
		return errors.New("output directories must not be empty")
	}
	return nil
}

// Validate reports the first problem with the conversion settings, if any.
func (c ConversionConfig) Validate() error {
	switch c.Backend {
	case BackendNative, BackendContainer:
	default:
		return fmt.Errorf("unknown conversion backend %q", c.Backend)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	}
	return nil
}
