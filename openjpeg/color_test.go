package openjpeg

import (
	"testing"

	"github.com/cocosip/go-openjpeg/imagedata"
)

func TestSYCCPixelTruncation(t *testing.T) {
	// 8-bit: offset 128, upper bound 255. Expected values are hand
	// computed with the float products truncated toward zero.
	tests := []struct {
		y, cb, cr int32
		r, g, b   int32
	}{
		// Neutral chroma passes luma through.
		{0, 128, 128, 0, 0, 0},
		{255, 128, 128, 255, 255, 255},
		{100, 128, 128, 100, 100, 100},
		// cb'=72, cr'=-78: r=100-109 -> clamp 0; g=100-(-30)=130
		// (0.344*72+0.714*-78 = -30.924 truncates to -30); b=100+127=227.
		{100, 200, 50, 0, 130, 227},
		// Clamp extremes from the corners of the cube.
		{0, 0, 255, 178, 0, 0},
		{255, 255, 0, 76, 255, 255},
	}
	for _, tt := range tests {
		r, g, b := syccPixel(128, 255, tt.y, tt.cb, tt.cr)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("syccPixel(y=%d cb=%d cr=%d) = (%d,%d,%d), want (%d,%d,%d)",
				tt.y, tt.cb, tt.cr, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestSYCCPixelRange(t *testing.T) {
	// Every corner of the 8-bit input cube must land inside [0, 255].
	for _, y := range []int32{0, 255} {
		for _, cb := range []int32{0, 255} {
			for _, cr := range []int32{0, 255} {
				r, g, b := syccPixel(128, 255, y, cb, cr)
				for _, v := range []int32{r, g, b} {
					if v < 0 || v > 255 {
						t.Errorf("syccPixel(%d,%d,%d) out of range: (%d,%d,%d)",
							y, cb, cr, r, g, b)
					}
				}
			}
		}
	}
}

func sycc444Image(y, cb, cr []int32, w, h uint32) *imagedata.Image {
	return &imagedata.Image{
		X0: 0, Y0: 0, X1: w, Y1: h,
		ColorSpace: imagedata.ColorSpaceSYCC,
		Comps: []imagedata.Component{
			{DX: 1, DY: 1, Prec: 8, W: w, H: h, Data: y},
			{DX: 1, DY: 1, Prec: 8, W: w, H: h, Data: cb},
			{DX: 1, DY: 1, Prec: 8, W: w, H: h, Data: cr},
		},
	}
}

func TestSYCC444(t *testing.T) {
	img := sycc444Image(
		[]int32{100, 0},
		[]int32{200, 0},
		[]int32{50, 255},
		2, 1)
	syccToRGB(img)

	if img.ColorSpace != imagedata.ColorSpaceSRGB {
		t.Fatalf("ColorSpace = %s, want sRGB", img.ColorSpace)
	}
	if img.Comps[0].Data[0] != 0 || img.Comps[1].Data[0] != 130 || img.Comps[2].Data[0] != 227 {
		t.Errorf("pixel 0 = (%d,%d,%d), want (0,130,227)",
			img.Comps[0].Data[0], img.Comps[1].Data[0], img.Comps[2].Data[0])
	}
	if img.Comps[0].Data[1] != 178 || img.Comps[1].Data[1] != 0 || img.Comps[2].Data[1] != 0 {
		t.Errorf("pixel 1 = (%d,%d,%d), want (178,0,0)",
			img.Comps[0].Data[1], img.Comps[1].Data[1], img.Comps[2].Data[1])
	}
}

func TestSYCC422(t *testing.T) {
	// 4x1: each chroma sample covers two luma columns.
	img := &imagedata.Image{
		X0: 0, Y0: 0, X1: 4, Y1: 1,
		ColorSpace: imagedata.ColorSpaceSYCC,
		Comps: []imagedata.Component{
			{DX: 1, DY: 1, Prec: 8, W: 4, H: 1, Data: []int32{10, 20, 30, 40}},
			{DX: 2, DY: 1, Prec: 8, W: 2, H: 1, Data: []int32{128, 128}},
			{DX: 2, DY: 1, Prec: 8, W: 2, H: 1, Data: []int32{128, 128}},
		},
	}
	syccToRGB(img)

	if img.ColorSpace != imagedata.ColorSpaceSRGB {
		t.Fatalf("ColorSpace = %s, want sRGB", img.ColorSpace)
	}
	for i := 1; i < 3; i++ {
		c := &img.Comps[i]
		if c.W != 4 || c.H != 1 || c.DX != 1 || c.DY != 1 {
			t.Fatalf("component %d not promoted: %dx%d (%d,%d)", i, c.W, c.H, c.DX, c.DY)
		}
	}
	want := []int32{10, 20, 30, 40}
	for i, v := range want {
		if img.Comps[0].Data[i] != v || img.Comps[1].Data[i] != v || img.Comps[2].Data[i] != v {
			t.Errorf("pixel %d = (%d,%d,%d), want neutral %d",
				i, img.Comps[0].Data[i], img.Comps[1].Data[i], img.Comps[2].Data[i], v)
		}
	}
}

func TestSYCC420OddOriginUsesZeroChroma(t *testing.T) {
	// X0 and Y0 odd: the first row and first column carry no chroma
	// sample and must use cb=cr=0, not replicated chroma.
	img := &imagedata.Image{
		X0: 1, Y0: 1, X1: 4, Y1: 4,
		ColorSpace: imagedata.ColorSpaceSYCC,
		Comps: []imagedata.Component{
			{DX: 1, DY: 1, Prec: 8, W: 3, H: 3, Data: []int32{
				100, 100, 100,
				100, 100, 100,
				100, 100, 100,
			}},
			{DX: 2, DY: 2, Prec: 8, W: 2, H: 2, Data: []int32{128, 128, 128, 128}},
			{DX: 2, DY: 2, Prec: 8, W: 2, H: 2, Data: []int32{128, 128, 128, 128}},
		},
	}
	syccToRGB(img)

	// With cb=cr=0 for the boundary pixels: cb'=cr'=-128, so
	// r = 100-179 -> 0, g = 100+135 = 235, b = 100-226 -> 0. The zero
	// chroma applies to the whole first row and, within each row pair, to
	// the first column of the upper row only.
	checks := []struct {
		idx     int
		r, g, b int32
	}{
		{0, 0, 235, 0}, // first row
		{1, 0, 235, 0},
		{2, 0, 235, 0},
		{3, 0, 235, 0},     // first column, upper row of the pair
		{4, 100, 100, 100}, // interior uses neutral chroma
		{6, 100, 100, 100}, // lower row of the pair reads real chroma
	}
	for _, c := range checks {
		r := img.Comps[0].Data[c.idx]
		g := img.Comps[1].Data[c.idx]
		b := img.Comps[2].Data[c.idx]
		if r != c.r || g != c.g || b != c.b {
			t.Errorf("pixel %d = (%d,%d,%d), want (%d,%d,%d)", c.idx, r, g, b, c.r, c.g, c.b)
		}
	}
}

func TestSYCCUnrecognizedFactorsPassThrough(t *testing.T) {
	img := &imagedata.Image{
		X0: 0, Y0: 0, X1: 6, Y1: 1,
		ColorSpace: imagedata.ColorSpaceSYCC,
		Comps: []imagedata.Component{
			{DX: 1, DY: 1, Prec: 8, W: 6, H: 1, Data: make([]int32, 6)},
			{DX: 3, DY: 1, Prec: 8, W: 2, H: 1, Data: []int32{1, 2}},
			{DX: 3, DY: 1, Prec: 8, W: 2, H: 1, Data: []int32{3, 4}},
		},
	}
	syccToRGB(img)

	if img.ColorSpace != imagedata.ColorSpaceSYCC {
		t.Errorf("ColorSpace = %s, want sYCC untouched", img.ColorSpace)
	}
	if img.Comps[1].Data[0] != 1 || img.Comps[1].W != 2 {
		t.Error("pass-through modified the image")
	}
}

func TestSYCCFewComponentsRetagsGray(t *testing.T) {
	img := &imagedata.Image{
		X0: 0, Y0: 0, X1: 2, Y1: 1,
		ColorSpace: imagedata.ColorSpaceSYCC,
		Comps: []imagedata.Component{
			{DX: 1, DY: 1, Prec: 8, W: 2, H: 1, Data: []int32{7, 8}},
		},
	}
	syccToRGB(img)

	if img.ColorSpace != imagedata.ColorSpaceGray {
		t.Errorf("ColorSpace = %s, want greyscale", img.ColorSpace)
	}
	if img.Comps[0].Data[0] != 7 {
		t.Error("samples must be untouched")
	}
}
