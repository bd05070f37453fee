// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil holds the file helpers shared by the fetch and convert stages.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes the output of fill to a temporary file next to
// path and renames it over path once fill and the close succeed. An
// existing file at path is replaced. The file is created with mode 0644. It
// returns the number of bytes written.
func WriteFileAtomic(path string, fill func(io.Writer) error) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".chapter-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// CreateTemp opens with 0600; outputs are plain data files.
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("setting temp file mode: %w", err)
	}

	cw := &countingWriter{w: tmpFile}
	fillErr := fill(cw)
	closeErr := tmpFile.Close()
	if fillErr != nil {
		os.Remove(tmpPath)
		return 0, fillErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return cw.n, nil
}

// EnsureDirs creates each directory if it is missing. Existing directories
// and their contents are left alone.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
