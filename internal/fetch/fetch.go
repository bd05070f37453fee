// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads the chapter SVGs one at a time and rasterizes each
// to PNG right after it lands on disk.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/chapter-images/internal/convert"
	"github.com/pdiddy/chapter-images/internal/fsutil"
	"github.com/pdiddy/chapter-images/internal/httputil"
	"github.com/pdiddy/chapter-images/pkg/types"
)

// Recorder receives each chapter after it has been fetched and, unless
// conversion is skipped, converted.
type Recorder interface {
	Record(ctx context.Context, ch types.Chapter) error
}

// Result summarizes a completed run.
type Result struct {
	Fetched   int
	Converted int
	Chapters  []types.Chapter
}

// Run fetches chapters cfg.First..cfg.Last in ascending order. For each it
// GETs the SVG, writes the body verbatim whatever the HTTP status, converts
// it to PNG with conv and waits cfg.Delay before the next request. The first
// error stops the run; the chapters completed so far are returned with it.
// conv may be nil when cfg.SkipConvert is set, and rec may be nil.
func Run(ctx context.Context, client *http.Client, conv convert.Converter, cfg types.FetchConfig, rec Recorder, w io.Writer) (Result, error) {
	var result Result
	if err := cfg.Validate(); err != nil {
		return result, fmt.Errorf("invalid configuration: %w", err)
	}
	if conv == nil && !cfg.SkipConvert {
		return result, fmt.Errorf("no converter configured")
	}
	if err := fsutil.EnsureDirs(cfg.SVGDir, cfg.PNGDir); err != nil {
		return result, err
	}

	layout := LayoutFor(cfg)
	for index := cfg.First; index <= cfg.Last; index++ {
		if index > cfg.First && cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}

		ch, err := fetchChapter(ctx, client, conv, layout, index, cfg, w)
		if err != nil {
			return result, fmt.Errorf("chapter %s: %w", PaddedIndex(index), err)
		}
		result.Fetched++
		if ch.Converted {
			result.Converted++
		}
		result.Chapters = append(result.Chapters, ch)

		if rec != nil {
			if err := rec.Record(ctx, ch); err != nil {
				return result, fmt.Errorf("chapter %s: recording: %w", PaddedIndex(index), err)
			}
		}
	}

	fmt.Fprintf(w, "done: %d fetched, %d converted\n", result.Fetched, result.Converted)
	return result, nil
}

func fetchChapter(ctx context.Context, client *http.Client, conv convert.Converter, layout Layout, index int, cfg types.FetchConfig, w io.Writer) (types.Chapter, error) {
	ch := layout.Chapter(index)

	fmt.Fprintf(w, "downloading %s\n", ch.SourceURL)
	resp, err := httputil.Get(ctx, client, ch.SourceURL, cfg.UserAgent, cfg.MaxRetries)
	if err != nil {
		return ch, fmt.Errorf("downloading: %w", err)
	}
	defer resp.Body.Close()
	ch.StatusCode = resp.StatusCode

	fmt.Fprintf(w, "saving to %s ...\n", ch.VectorPath)
	n, err := fsutil.WriteFileAtomic(ch.VectorPath, func(dst io.Writer) error {
		_, err := io.Copy(dst, resp.Body)
		return err
	})
	if err != nil {
		return ch, fmt.Errorf("saving: %w", err)
	}
	ch.Bytes = n
	ch.FetchedAt = time.Now().UTC()

	if cfg.SkipConvert {
		return ch, nil
	}

	src := ch.VectorPath
	if cfg.LegacySourcePath {
		src = layout.LegacySourcePath(index)
	}
	fmt.Fprintf(w, "converting to PNG in %s ...\n\n", ch.RasterPath)
	if err := conv.Convert(src, ch.RasterPath); err != nil {
		return ch, fmt.Errorf("converting: %w", err)
	}
	ch.Converted = true
	return ch, nil
}
