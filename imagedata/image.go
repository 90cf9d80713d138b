// Package imagedata defines the image and component descriptors shared by the
// decode and encode pipelines. Samples are always held as signed 32-bit
// integers regardless of the declared component precision.
package imagedata

import "fmt"

// ColorSpace identifies the declared colour encoding of an image. The numeric
// values match the codes reported across the codec boundary.
type ColorSpace int

const (
	ColorSpaceUnknown     ColorSpace = -1
	ColorSpaceUnspecified ColorSpace = 0
	ColorSpaceSRGB        ColorSpace = 1
	ColorSpaceGray        ColorSpace = 2
	ColorSpaceSYCC        ColorSpace = 3
	ColorSpaceEYCC        ColorSpace = 4
	ColorSpaceCMYK        ColorSpace = 5
)

// ColorSpaceFromCode maps a numeric colour-space code to a ColorSpace.
// Codes outside the known range map to ColorSpaceUnknown.
func ColorSpaceFromCode(code int) ColorSpace {
	switch ColorSpace(code) {
	case ColorSpaceUnspecified, ColorSpaceSRGB, ColorSpaceGray,
		ColorSpaceSYCC, ColorSpaceEYCC, ColorSpaceCMYK:
		return ColorSpace(code)
	default:
		return ColorSpaceUnknown
	}
}

// String returns the colour-space label reported to callers.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceUnspecified:
		return "unspecified"
	case ColorSpaceSRGB:
		return "sRGB"
	case ColorSpaceGray:
		return "greyscale"
	case ColorSpaceSYCC:
		return "sYCC"
	case ColorSpaceEYCC:
		return "e-YCC"
	case ColorSpaceCMYK:
		return "CMYK"
	default:
		return "unknown"
	}
}

// Component describes one sample plane of an image.
type Component struct {
	// DX, DY are the subsample factors relative to the reference grid (>= 1).
	DX, DY uint32
	// Prec is the precision in bits (1-32).
	Prec int
	// Signed reports whether samples are signed.
	Signed bool
	// W, H are the plane dimensions in samples; these differ from the image
	// dimensions when the component is subsampled.
	W, H uint32
	// X0, Y0 are the plane origin in component coordinates.
	X0, Y0 uint32
	// Data holds W*H samples, row-major. Owned by the enclosing Image.
	Data []int32
}

// Image describes a logical image region [X0,X1) x [Y0,Y1) on the reference
// grid with its ordered components.
type Image struct {
	X0, Y0, X1, Y1 uint32
	ColorSpace     ColorSpace
	Comps          []Component
}

// Width returns X1 - X0.
func (img *Image) Width() uint32 { return img.X1 - img.X0 }

// Height returns Y1 - Y0.
func (img *Image) Height() uint32 { return img.Y1 - img.Y0 }

// Validate checks the structural invariants of the descriptor.
func (img *Image) Validate() error {
	if img.X1 <= img.X0 || img.Y1 <= img.Y0 {
		return fmt.Errorf("imagedata: degenerate image bounds [%d,%d)x[%d,%d)",
			img.X0, img.X1, img.Y0, img.Y1)
	}
	if len(img.Comps) == 0 {
		return fmt.Errorf("imagedata: image has no components")
	}
	for i := range img.Comps {
		c := &img.Comps[i]
		if c.DX < 1 || c.DY < 1 {
			return fmt.Errorf("imagedata: component %d has invalid subsample factors (%d,%d)", i, c.DX, c.DY)
		}
		if c.Prec < 1 || c.Prec > 32 {
			return fmt.Errorf("imagedata: component %d has invalid precision %d", i, c.Prec)
		}
		if c.W == 0 || c.H == 0 {
			return fmt.Errorf("imagedata: component %d has empty dimensions %dx%d", i, c.W, c.H)
		}
		if c.Data != nil && len(c.Data) != int(c.W)*int(c.H) {
			return fmt.Errorf("imagedata: component %d has %d samples, want %d", i, len(c.Data), int(c.W)*int(c.H))
		}
	}
	return nil
}

// CeilDiv returns ceil(a/b) for the grid arithmetic used throughout the
// boundary layer.
func CeilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

// New builds an image covering [x0,x1) x [y0,y1) with n components sharing
// prec and signedness at full resolution (dx=dy=1), with allocated planes.
func New(x0, y0, x1, y1 uint32, n, prec int, signed bool, cs ColorSpace) (*Image, error) {
	img := &Image{X0: x0, Y0: y0, X1: x1, Y1: y1, ColorSpace: cs}
	w := x1 - x0
	h := y1 - y0
	img.Comps = make([]Component, n)
	for i := range img.Comps {
		img.Comps[i] = Component{
			DX: 1, DY: 1,
			Prec:   prec,
			Signed: signed,
			W:      w, H: h,
			X0: x0, Y0: y0,
			Data: make([]int32, int(w)*int(h)),
		}
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}
