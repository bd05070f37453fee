// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pdiddy/chapter-images/internal/container"
	"github.com/pdiddy/chapter-images/internal/fsutil"
)

// DefaultImage is a container image whose entrypoint is rsvg-convert. It is
// built from build/rsvg with `mage image`.
const DefaultImage = "chapter-images/rsvg:latest"

// ContainerConverter rasterizes SVGs by piping them through rsvg-convert in
// a container. Output quality then matches librsvg/cairo, the renderer the
// chapter images were originally produced with.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	scale   float64
}

// NewContainerConverter creates a converter that runs image on rt. It
// verifies the image exists locally before returning.
func NewContainerConverter(rt container.Runtime, image string, scale float64) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if scale <= 0 {
		scale = 1
	}
	if err := rt.ImageExists(image); err != nil {
		if image == DefaultImage {
			return nil, fmt.Errorf("rasterizer image not available in %s (build it with `mage image`): %w", rt.Name(), err)
		}
		return nil, fmt.Errorf("rasterizer image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image, scale: scale}, nil
}

// Convert pipes svgPath through the container and writes stdout to pngPath.
func (c *ContainerConverter) Convert(svgPath, pngPath string) error {
	f, err := os.Open(svgPath)
	if err != nil {
		return fmt.Errorf("opening SVG %s: %w", svgPath, err)
	}
	defer f.Close()

	args := []string{"--format", "png", "--zoom", strconv.FormatFloat(c.scale, 'f', -1, 64)}

	var out bytes.Buffer
	if err := c.runtime.Run(c.image, args, f, &out); err != nil {
		return fmt.Errorf("converting %s with %s: %w", svgPath, c.image, err)
	}
	if out.Len() == 0 {
		return fmt.Errorf("%s produced empty output for %s", c.image, svgPath)
	}

	if _, err := fsutil.WriteFileAtomic(pngPath, func(w io.Writer) error {
		_, err := out.WriteTo(w)
		return err
	}); err != nil {
		return fmt.Errorf("writing PNG %s: %w", pngPath, err)
	}
	return nil
}
