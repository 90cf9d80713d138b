package openjpeg

import "github.com/cocosip/go-openjpeg/imagedata"

// sYCC to RGB, Amendment 1 to IEC 61966-2-1:
//
//	R: 1       -3.68213e-05   1.40199    : Y
//	G: 1.00003 -0.344125     -0.714128   : Cb - 2^(prec-1)
//	B: 0.999823 1.77204      -8.04142e-06: Cr - 2^(prec-1)
//
// The float products are truncated toward zero, not rounded; the truncation
// is part of the reference behaviour and must not be changed.
func syccPixel(offset, upb, y, cb, cr int32) (int32, int32, int32) {
	cb -= offset
	cr -= offset

	r := y + int32(1.402*float64(cr))
	if r < 0 {
		r = 0
	} else if r > upb {
		r = upb
	}

	g := y - int32(0.344*float64(cb)+0.714*float64(cr))
	if g < 0 {
		g = 0
	} else if g > upb {
		g = upb
	}

	b := y + int32(1.772*float64(cb))
	if b < 0 {
		b = 0
	} else if b > upb {
		b = upb
	}
	return r, g, b
}

// syccToRGB converts an sYCC image to sRGB in place, dispatching on the
// chroma subsampling pattern. Unrecognized patterns pass through unchanged
// and keep the sYCC tag; images with fewer than 3 components are retagged
// greyscale without a transform.
func syccToRGB(img *imagedata.Image) {
	if len(img.Comps) < 3 {
		img.ColorSpace = imagedata.ColorSpaceGray
		return
	}
	c0, c1, c2 := &img.Comps[0], &img.Comps[1], &img.Comps[2]
	switch {
	case c0.DX == 1 && c0.DY == 1 &&
		c1.DX == 2 && c1.DY == 2 &&
		c2.DX == 2 && c2.DY == 2:
		sycc420(img)
	case c0.DX == 1 && c0.DY == 1 &&
		c1.DX == 2 && c1.DY == 1 &&
		c2.DX == 2 && c2.DY == 1:
		sycc422(img)
	case c0.DX == 1 && c0.DY == 1 &&
		c1.DX == 1 && c1.DY == 1 &&
		c2.DX == 1 && c2.DY == 1:
		sycc444(img)
	}
}

func syccBounds(img *imagedata.Image) (offset, upb int32) {
	p := img.Comps[0].Prec
	return int32(1) << uint(p-1), (int32(1) << uint(p)) - 1
}

// finishSYCC installs the transformed planes, promotes the chroma components
// to the luma geometry and retags the image sRGB.
func finishSYCC(img *imagedata.Image, r, g, b []int32) {
	c0 := &img.Comps[0]
	for i := 1; i < 3; i++ {
		c := &img.Comps[i]
		c.W, c.H = c0.W, c0.H
		c.DX, c.DY = c0.DX, c0.DY
		c.X0, c.Y0 = c0.X0, c0.Y0
	}
	img.Comps[0].Data = r
	img.Comps[1].Data = g
	img.Comps[2].Data = b
	img.ColorSpace = imagedata.ColorSpaceSRGB
}

func sycc444(img *imagedata.Image) {
	offset, upb := syccBounds(img)
	y := img.Comps[0].Data
	cb := img.Comps[1].Data
	cr := img.Comps[2].Data

	n := len(y)
	r := make([]int32, n)
	g := make([]int32, n)
	b := make([]int32, n)
	for i := 0; i < n; i++ {
		r[i], g[i], b[i] = syccPixel(offset, upb, y[i], cb[i], cr[i])
	}
	finishSYCC(img, r, g, b)
}

func sycc422(img *imagedata.Image) {
	offset, upb := syccBounds(img)
	maxw := int(img.Comps[0].W)
	maxh := int(img.Comps[0].H)
	y := img.Comps[0].Data
	cb := img.Comps[1].Data
	cr := img.Comps[2].Data

	r := make([]int32, maxw*maxh)
	g := make([]int32, maxw*maxh)
	b := make([]int32, maxw*maxh)

	// An odd image origin means the first column has no chroma sample;
	// it uses cb = cr = 0 rather than replicated chroma.
	offx := int(img.X0 & 1)
	loopw := maxw - offx

	yi, ci, di := 0, 0, 0
	for row := 0; row < maxh; row++ {
		if offx > 0 {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], 0, 0)
			yi++
			di++
		}
		j := 0
		for ; j < loopw&^1; j += 2 {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			ci++
		}
		if j < loopw {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			ci++
		}
	}
	finishSYCC(img, r, g, b)
}

func sycc420(img *imagedata.Image) {
	offset, upb := syccBounds(img)
	maxw := int(img.Comps[0].W)
	maxh := int(img.Comps[0].H)
	y := img.Comps[0].Data
	cb := img.Comps[1].Data
	cr := img.Comps[2].Data

	r := make([]int32, maxw*maxh)
	g := make([]int32, maxw*maxh)
	b := make([]int32, maxw*maxh)

	// Odd origins: the first column and/or first row carry no chroma.
	offx := int(img.X0 & 1)
	loopw := maxw - offx
	offy := int(img.Y0 & 1)
	looph := maxh - offy

	yi, ci, di := 0, 0, 0
	if offy > 0 {
		for j := 0; j < maxw; j++ {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], 0, 0)
			yi++
			di++
		}
	}

	i := 0
	for ; i < looph&^1; i += 2 {
		nyi := yi + maxw
		ndi := di + maxw

		if offx > 0 {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], 0, 0)
			yi++
			di++
			r[ndi], g[ndi], b[ndi] = syccPixel(offset, upb, y[nyi], cb[ci], cr[ci])
			nyi++
			ndi++
		}
		j := 0
		for ; j < loopw&^1; j += 2 {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			r[ndi], g[ndi], b[ndi] = syccPixel(offset, upb, y[nyi], cb[ci], cr[ci])
			nyi++
			ndi++
			r[ndi], g[ndi], b[ndi] = syccPixel(offset, upb, y[nyi], cb[ci], cr[ci])
			nyi++
			ndi++
			ci++
		}
		if j < loopw {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			r[ndi], g[ndi], b[ndi] = syccPixel(offset, upb, y[nyi], cb[ci], cr[ci])
			nyi++
			ndi++
			ci++
		}
		yi += maxw
		di += maxw
	}
	if i < looph {
		// Trailing row without a partner; chroma advances per pair as usual.
		j := 0
		for ; j < maxw&^1; j += 2 {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
			yi++
			di++
			ci++
		}
		if j < maxw {
			r[di], g[di], b[di] = syccPixel(offset, upb, y[yi], cb[ci], cr[ci])
		}
	}
	finishSYCC(img, r, g, b)
}
