// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert rasterizes chapter SVGs to PNG with pluggable backends.
package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pdiddy/chapter-images/internal/container"
	"github.com/pdiddy/chapter-images/pkg/types"
)

// Converter turns the SVG at svgPath into a PNG written to pngPath.
// Different backends (native, container) implement this interface.
type Converter interface {
	Convert(svgPath, pngPath string) error
}

// New returns the converter selected by cfg.Backend.
func New(cfg types.ConversionConfig) (Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendContainer:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(rt, cfg.Image, cfg.Scale)
	default:
		return NewNativeConverter(cfg.Scale, cfg.Strict), nil
	}
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the number of chapters processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any chapter failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch rasterizes already-downloaded chapters. Chapters whose SVG is
// missing are skipped, as are chapters whose PNG exists unless overwrite is
// set. Unlike the fetch run it keeps going after a failed chapter.
func ConvertBatch(c Converter, chapters []types.Chapter, overwrite bool, w io.Writer) BatchResult {
	var result BatchResult
	for _, ch := range chapters {
		name := filepath.Base(ch.VectorPath)

		if _, err := os.Stat(ch.VectorPath); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(w, "skipped: %s (not downloaded)\n", name)
			result.Skipped++
			continue
		}
		if !overwrite {
			if _, err := os.Stat(ch.RasterPath); err == nil {
				fmt.Fprintf(w, "skipped: %s (already converted)\n", name)
				result.Skipped++
				continue
			}
		}

		if err := os.MkdirAll(filepath.Dir(ch.RasterPath), 0o755); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			result.Failed++
			continue
		}
		if err := c.Convert(ch.VectorPath, ch.RasterPath); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s\n", name, ch.RasterPath)
		result.Converted++
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
