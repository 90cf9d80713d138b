package openjpeg

import (
	"fmt"

	"github.com/cocosip/go-openjpeg/imagedata"
)

// upsampleComponents returns an image where every component is at full
// resolution, replicating each subsampled sample over the dx x dy block it
// covers. When nothing is subsampled the input image is returned as is, with
// no copy. The input must not be used after a replacement is returned.
func upsampleComponents(img *imagedata.Image) (*imagedata.Image, error) {
	upsample := false
	for i := range img.Comps {
		if img.Comps[i].DX > 1 || img.Comps[i].DY > 1 {
			upsample = true
			break
		}
	}
	if !upsample {
		return img, nil
	}

	out := &imagedata.Image{
		X0: img.X0, Y0: img.Y0,
		X1: img.X1, Y1: img.Y1,
		ColorSpace: img.ColorSpace,
		Comps:      make([]imagedata.Component, len(img.Comps)),
	}
	for i := range img.Comps {
		src := &img.Comps[i]
		dst := &out.Comps[i]

		*dst = imagedata.Component{
			DX: 1, DY: 1,
			Prec:   src.Prec,
			Signed: src.Signed,
			X0:     img.X0,
			Y0:     img.Y0,
			W:      src.W,
			H:      src.H,
		}
		if src.DX > 1 {
			dst.W = img.X1 - img.X0
		}
		if src.DY > 1 {
			dst.H = img.Y1 - img.Y0
		}
		dst.Data = make([]int32, int(dst.W)*int(dst.H))

		if src.DX == 1 && src.DY == 1 {
			copy(dst.Data, src.Data)
			continue
		}
		if err := replicate(src, dst, img.X0, img.Y0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// replicate expands one subsampled plane into dst. The sample at source
// position (sx, sy) covers the block starting at (dx*sx - x0 offset); rows
// and columns before the first covered position are zero filled.
func replicate(src, dst *imagedata.Component, imgX0, imgY0 uint32) error {
	xoff := src.DX*src.X0 - imgX0
	yoff := src.DY*src.Y0 - imgY0
	if xoff >= src.DX || yoff >= src.DY {
		return fmt.Errorf("invalid subsampling offset (%d,%d) for factors (%d,%d)",
			xoff, yoff, src.DX, src.DY)
	}

	w := int(dst.W)
	h := int(dst.H)
	dx := int(src.DX)
	dy := int(src.DY)
	srow := 0
	drow := 0

	y := 0
	for ; y < int(yoff); y++ {
		for x := 0; x < w; x++ {
			dst.Data[drow+x] = 0
		}
		drow += w
	}

	fillRow := func() {
		x := 0
		for ; x < int(xoff); x++ {
			dst.Data[drow+x] = 0
		}
		sx := 0
		if w > dx-1 {
			for ; x < w-(dx-1); x += dx {
				v := src.Data[srow+sx]
				for k := 0; k < dx; k++ {
					dst.Data[drow+x+k] = v
				}
				sx++
			}
		}
		for ; x < w; x++ {
			dst.Data[drow+x] = src.Data[srow+sx]
		}
	}

	if h > dy-1 {
		for ; y < h-(dy-1); y += dy {
			fillRow()
			drow += w
			for k := 1; k < dy; k++ {
				copy(dst.Data[drow:drow+w], dst.Data[drow-w:drow])
				drow += w
			}
			srow += int(src.W)
		}
	}
	if y < h {
		fillRow()
		drow += w
		y++
		for ; y < h; y++ {
			copy(dst.Data[drow:drow+w], dst.Data[drow-w:drow])
			drow += w
		}
	}
	return nil
}
