// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/pdiddy/chapter-images/internal/fsutil"
)

// NativeConverter rasterizes SVGs in-process with oksvg and rasterx. The
// PNG takes the root element's absolute width and height, falling back to
// the viewBox for whatever is missing, multiplied by scale.
type NativeConverter struct {
	scale float64
	mode  oksvg.ErrorMode
}

// NewNativeConverter creates a pure-Go converter. When strict is false,
// SVG elements the parser does not understand are skipped.
func NewNativeConverter(scale float64, strict bool) *NativeConverter {
	if scale <= 0 {
		scale = 1
	}
	mode := oksvg.IgnoreErrorMode
	if strict {
		mode = oksvg.StrictErrorMode
	}
	return &NativeConverter{scale: scale, mode: mode}
}

// Convert reads the SVG at svgPath and writes the rendered PNG to pngPath.
func (n *NativeConverter) Convert(svgPath, pngPath string) error {
	f, err := os.Open(svgPath)
	if err != nil {
		return fmt.Errorf("opening SVG %s: %w", svgPath, err)
	}
	defer f.Close()

	img, err := n.Rasterize(f)
	if err != nil {
		return fmt.Errorf("rasterizing %s: %w", svgPath, err)
	}

	_, err = fsutil.WriteFileAtomic(pngPath, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return fmt.Errorf("writing PNG %s: %w", pngPath, err)
	}
	return nil
}

// Rasterize parses an SVG stream and renders it onto a transparent canvas.
func (n *NativeConverter) Rasterize(r io.Reader) (*image.RGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading SVG: %w", err)
	}
	root, err := readSVGRoot(data)
	if err != nil {
		return nil, fmt.Errorf("parsing SVG: %w", err)
	}
	docW, docH, err := root.size()
	if err != nil {
		return nil, err
	}

	// oksvg rejects relative root lengths, and the size is already known.
	icon, err := oksvg.ReadIconStream(bytes.NewReader(root.withoutSizeAttrs(data)), n.mode)
	if err != nil {
		return nil, fmt.Errorf("parsing SVG: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.X, icon.ViewBox.Y = 0, 0
		icon.ViewBox.W, icon.ViewBox.H = docW, docH
	}

	w := int(math.Ceil(docW * n.scale))
	h := int(math.Ceil(docH * n.scale))
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}
