package topology

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

// Gray levels used in the raster.
const (
	EmptyPixel     uint8 = 0
	ConnectorPixel uint8 = 127
	AnchorPixel    uint8 = 255
)

// Pixel returns the gray level for a cell type.
func (t CellType) Pixel() uint8 {
	switch t {
	case Connector:
		return ConnectorPixel
	case Anchor:
		return AnchorPixel
	default:
		return EmptyPixel
	}
}

// Raster renders the classified cells inside the rectangle as an 8-bit grayscale image
// where pixel (i, j) is the cell (Origin.x + i, Origin.z + j).  Cells outside the
// rectangle are skipped.
func Raster(m Map, rect chunkgrid.Rect2d) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, int(rect.Width), int(rect.Height)))
	for p, t := range m {
		if !rect.Contains(p) {
			continue
		}
		i, j := int(p[0]-rect.Origin[0]), int(p[1]-rect.Origin[1])
		img.Pix[j*img.Stride+i] = t.Pixel()
	}
	return img
}

// WritePNG encodes the raster of the classified cells as a grayscale PNG.
func WritePNG(w io.Writer, m Map, rect chunkgrid.Rect2d) error {
	if rect.Width <= 0 || rect.Height <= 0 {
		return fmt.Errorf("cannot write %d x %d raster", rect.Width, rect.Height)
	}
	if err := png.Encode(w, Raster(m, rect)); err != nil {
		return fmt.Errorf("unable to encode raster as PNG: %w", err)
	}
	return nil
}
