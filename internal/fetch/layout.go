// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"path/filepath"

	"github.com/pdiddy/chapter-images/pkg/types"
)

// PaddedIndex formats a chapter index as a three-digit string (7 -> "007").
func PaddedIndex(index int) string {
	return fmt.Sprintf("%03d", index)
}

// Layout derives source URLs and local paths from a chapter index.
type Layout struct {
	BaseURL string
	SVGDir  string
	PNGDir  string
}

// LayoutFor returns the layout described by cfg.
func LayoutFor(cfg types.FetchConfig) Layout {
	return Layout{BaseURL: cfg.BaseURL, SVGDir: cfg.SVGDir, PNGDir: cfg.PNGDir}
}

// SourceURL returns baseURL + "NNN.svg".
func (l Layout) SourceURL(index int) string {
	return l.BaseURL + PaddedIndex(index) + ".svg"
}

// VectorPath returns "<svg dir>/chapter_NNN.svg".
func (l Layout) VectorPath(index int) string {
	return filepath.Join(l.SVGDir, "chapter_"+PaddedIndex(index)+".svg")
}

// RasterPath returns "<png dir>/chapter_NNN.png".
func (l Layout) RasterPath(index int) string {
	return filepath.Join(l.PNGDir, "chapter_"+PaddedIndex(index)+".png")
}

// LegacySourcePath returns "<svg dir>/NNN.svg", the unprefixed name the
// original download script read back when converting.
func (l Layout) LegacySourcePath(index int) string {
	return filepath.Join(l.SVGDir, PaddedIndex(index)+".svg")
}

// Chapter returns the chapter record for index with its derived fields set.
func (l Layout) Chapter(index int) types.Chapter {
	return types.Chapter{
		Index:      index,
		SourceURL:  l.SourceURL(index),
		VectorPath: l.VectorPath(index),
		RasterPath: l.RasterPath(index),
	}
}

// Chapters returns the records for first..last inclusive.
func (l Layout) Chapters(first, last int) []types.Chapter {
	if last < first {
		return nil
	}
	out := make([]types.Chapter, 0, last-first+1)
	for i := first; i <= last; i++ {
		out = append(out, l.Chapter(i))
	}
	return out
}
