// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Chapter describes one chapter title image: where it is fetched from and
// where its vector and raster copies live on disk. All paths and the URL
// are derived from Index alone.
type Chapter struct {
	// Index is the chapter number (1..114 for the full set).
	Index int `json:"index" yaml:"index"`

	// SourceURL is the URL the SVG was fetched from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// VectorPath is the local path of the downloaded SVG.
	VectorPath string `json:"vector_path" yaml:"vector_path"`

	// RasterPath is the local path of the converted PNG.
	RasterPath string `json:"raster_path" yaml:"raster_path"`

	// StatusCode is the HTTP status returned by the fetch. It is recorded
	// but never checked; error pages are written like any other body.
	StatusCode int `json:"status_code" yaml:"status_code"`

	// Bytes is the number of bytes written to VectorPath.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	// Converted reports whether RasterPath was produced.
	Converted bool `json:"converted" yaml:"converted"`

	// FetchedAt is when the SVG was written.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}
