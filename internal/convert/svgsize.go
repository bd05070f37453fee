// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// CSS pixels per unit, at 96 dpi.
var unitPixels = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

var sizeAttr = regexp.MustCompile(`\s(?:width|height)\s*=\s*(?:"[^"]*"|'[^']*')`)

// svgRoot holds the sizing attributes of a document's root element.
type svgRoot struct {
	width, height    float64
	hasWidth         bool
	hasHeight        bool
	vbW, vbH         float64
	hasViewBox       bool
	tagStart, tagEnd int64
}

// readSVGRoot finds the root element of data and reads its width, height
// and viewBox. Lengths it cannot express in pixels (percentages, font
// relative units) count as absent.
func readSVGRoot(data []byte) (svgRoot, error) {
	var root svgRoot
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	// Only ASCII attribute names and numbers are read, which every
	// ASCII-compatible encoding leaves untouched.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return root, errors.New("no root element")
		}
		if err != nil {
			return root, fmt.Errorf("reading root element: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if el.Name.Local != "svg" {
			return root, fmt.Errorf("root element is <%s>, not <svg>", el.Name.Local)
		}
		root.tagStart, root.tagEnd = start, dec.InputOffset()

		for _, attr := range el.Attr {
			if attr.Name.Space != "" && attr.Name.Space != "http://www.w3.org/2000/svg" {
				continue
			}
			switch attr.Name.Local {
			case "width":
				root.width, root.hasWidth = parseLength(attr.Value)
			case "height":
				root.height, root.hasHeight = parseLength(attr.Value)
			case "viewBox":
				root.vbW, root.vbH, root.hasViewBox = parseViewBox(attr.Value)
			}
		}
		return root, nil
	}
}

// size returns the output size in pixels before scaling. Absolute width
// and height win; a single one is completed from the viewBox aspect ratio;
// otherwise the viewBox dimensions are used.
func (r svgRoot) size() (w, h float64, err error) {
	switch {
	case r.hasWidth && r.hasHeight:
		w, h = r.width, r.height
	case r.hasWidth && r.hasViewBox:
		w, h = r.width, r.width*r.vbH/r.vbW
	case r.hasHeight && r.hasViewBox:
		w, h = r.height*r.vbW/r.vbH, r.height
	case r.hasViewBox:
		w, h = r.vbW, r.vbH
	default:
		return 0, 0, errors.New("SVG has no usable size: needs a viewBox or absolute width and height")
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("SVG size %gx%g is empty", w, h)
	}
	return w, h, nil
}

// withoutSizeAttrs returns data with width and height removed from the
// root tag, leaving the viewBox as the only geometry the parser sees.
func (r svgRoot) withoutSizeAttrs(data []byte) []byte {
	if r.tagEnd <= r.tagStart || r.tagEnd > int64(len(data)) {
		return data
	}
	tag := sizeAttr.ReplaceAll(data[r.tagStart:r.tagEnd], nil)
	out := make([]byte, 0, len(data))
	out = append(out, data[:r.tagStart]...)
	out = append(out, tag...)
	return append(out, data[r.tagEnd:]...)
}

// parseLength converts an SVG length to pixels. It reports false for
// percentages, unknown units and non-positive values.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	i := len(s)
	for i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z' || s[i-1] >= 'A' && s[i-1] <= 'Z' || s[i-1] == '%') {
		i--
	}
	per, ok := unitPixels[strings.ToLower(s[i:])]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * per, true
}

func parseViewBox(s string) (w, h float64, ok bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return 0, 0, false
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, false
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return 0, 0, false
	}
	return vals[2], vals[3], true
}
