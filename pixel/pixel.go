// Package pixel converts between the codec's internal representation (signed
// 32-bit samples per component plane) and the flat little-endian byte buffers
// exchanged with the host: interleaved colour-by-pixel output buffers on the
// decode side, and raw input buffers on the encode side. Tile payloads
// produced by the codec engine (planar, one component after another) are
// unpacked here as well.
package pixel

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
)

// ErrLengthMismatch is returned when a host buffer's length does not exactly
// match the length implied by the image geometry. Buffers are never silently
// truncated or padded.
var ErrLengthMismatch = errors.New("pixel: buffer length mismatch")

// BytesPerSample returns the storage width for a precision: 1 byte up to
// 8 bits, 2 bytes up to 16, otherwise 4 (three-byte precisions round up).
func BytesPerSample(prec int) int {
	switch {
	case prec <= 8:
		return 1
	case prec <= 16:
		return 2
	default:
		return 4
	}
}

// mask returns the precision mask for prec bits (all ones for 32).
func mask(prec int) uint32 {
	if prec >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << prec) - 1
}

// normalize masks v to prec bits and, for signed data, sign-extends the
// precision's sign bit into the full word so the low storage bytes carry a
// correctly sign-extended container value. Applied unconditionally on the
// decode side: engine output is never trusted to be in range.
func normalize(v int32, prec int, signed bool) uint32 {
	m := mask(prec)
	u := uint32(v) & m
	if signed && prec < 32 && u&(uint32(1)<<(prec-1)) != 0 {
		u |= ^m
	}
	return u
}

// Interleave writes the component planes into out in colour-by-pixel order,
// little-endian, at BytesPerSample(prec) granularity. All planes must share
// the same length; len(out) must equal exactly len(comps)*plane*bps.
func Interleave(comps [][]int32, prec int, signed bool, out []byte) error {
	if prec < 1 || prec > 32 {
		return fmt.Errorf("pixel: unsupported precision %d", prec)
	}
	if len(comps) == 0 {
		return fmt.Errorf("pixel: no components")
	}
	n := len(comps[0])
	for i, c := range comps {
		if len(c) != n {
			return fmt.Errorf("pixel: component %d has %d samples, want %d", i, len(c), n)
		}
	}
	bps := BytesPerSample(prec)
	if len(out) != n*len(comps)*bps {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrLengthMismatch, len(out), n*len(comps)*bps)
	}

	pos := 0
	switch bps {
	case 1:
		for i := 0; i < n; i++ {
			for _, c := range comps {
				out[pos] = byte(normalize(c[i], prec, signed))
				pos++
			}
		}
	case 2:
		for i := 0; i < n; i++ {
			for _, c := range comps {
				u := normalize(c[i], prec, signed)
				out[pos] = byte(u)
				out[pos+1] = byte(u >> 8)
				pos += 2
			}
		}
	default:
		for i := 0; i < n; i++ {
			for _, c := range comps {
				u := normalize(c[i], prec, signed)
				out[pos] = byte(u)
				out[pos+1] = byte(u >> 8)
				out[pos+2] = byte(u >> 16)
				out[pos+3] = byte(u >> 24)
				pos += 4
			}
		}
	}
	return nil
}

// Deinterleave reconstructs per-component sample planes from a flat
// colour-by-pixel little-endian buffer at bytesPerSample granularity,
// sign-extending container values when signed. The buffer length must equal
// rows*cols*spp*bytesPerSample exactly.
func Deinterleave(buf []byte, rows, cols, spp, bytesPerSample int, signed bool) ([][]int32, error) {
	if bytesPerSample != 1 && bytesPerSample != 2 && bytesPerSample != 4 {
		return nil, fmt.Errorf("pixel: unsupported bytes per sample %d", bytesPerSample)
	}
	n := rows * cols
	want := n * spp * bytesPerSample
	if len(buf) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrLengthMismatch, len(buf), want)
	}

	comps := make([][]int32, spp)
	for c := range comps {
		comps[c] = make([]int32, n)
	}

	pos := 0
	switch bytesPerSample {
	case 1:
		for i := 0; i < n; i++ {
			for c := 0; c < spp; c++ {
				if signed {
					comps[c][i] = int32(int8(buf[pos]))
				} else {
					comps[c][i] = int32(buf[pos])
				}
				pos++
			}
		}
	case 2:
		for i := 0; i < n; i++ {
			for c := 0; c < spp; c++ {
				u := uint16(buf[pos]) | uint16(buf[pos+1])<<8
				if signed {
					comps[c][i] = int32(int16(u))
				} else {
					comps[c][i] = int32(u)
				}
				pos += 2
			}
		}
	default:
		for i := 0; i < n; i++ {
			for c := 0; c < spp; c++ {
				u := uint32(buf[pos]) | uint32(buf[pos+1])<<8 |
					uint32(buf[pos+2])<<16 | uint32(buf[pos+3])<<24
				comps[c][i] = int32(u)
				pos += 4
			}
		}
	}
	return comps, nil
}

// UnpackTile copies one tile's payload into the destination image. The
// payload is planar: for each component in order, the samples covering the
// tile's intersection with that component's grid, row-major, little-endian,
// at BytesPerSample(component precision) granularity.
func UnpackTile(img *imagedata.Image, t *engine.Tile, data []byte) error {
	if t.X0 < 0 || t.Y0 < 0 {
		return fmt.Errorf("pixel: negative tile origin (%d,%d)", t.X0, t.Y0)
	}
	pos := 0
	for ci := range img.Comps {
		c := &img.Comps[ci]
		// Tile bounds mapped onto the component grid.
		cx0 := imagedata.CeilDiv(uint32(t.X0), c.DX)
		cy0 := imagedata.CeilDiv(uint32(t.Y0), c.DY)
		cx1 := imagedata.CeilDiv(uint32(t.X1), c.DX)
		cy1 := imagedata.CeilDiv(uint32(t.Y1), c.DY)
		if cx1 <= cx0 || cy1 <= cy0 {
			return fmt.Errorf("pixel: tile %d empty on component %d", t.Index, ci)
		}
		if cx0 < c.X0 || cy0 < c.Y0 || cx1-c.X0 > c.W || cy1-c.Y0 > c.H {
			return fmt.Errorf("pixel: tile %d outside component %d plane", t.Index, ci)
		}
		cw := int(cx1 - cx0)
		ch := int(cy1 - cy0)
		csiz := BytesPerSample(c.Prec)
		need := cw * ch * csiz
		if pos+need > len(data) {
			return fmt.Errorf("pixel: tile %d payload truncated (component %d needs %d bytes, %d left)",
				t.Index, ci, need, len(data)-pos)
		}

		plane := data[pos : pos+need]
		pos += need
		bits := uint(csiz * 8)
		for y := 0; y < ch; y++ {
			dst := (int(cy0-c.Y0)+y)*int(c.W) + int(cx0-c.X0)
			src := y * cw * csiz
			for x := 0; x < cw; x++ {
				var u uint32
				switch csiz {
				case 1:
					u = uint32(plane[src])
					src++
				case 2:
					u = uint32(plane[src]) | uint32(plane[src+1])<<8
					src += 2
				default:
					u = uint32(plane[src]) | uint32(plane[src+1])<<8 |
						uint32(plane[src+2])<<16 | uint32(plane[src+3])<<24
					src += 4
				}
				if c.Signed && bits < 32 && u&(uint32(1)<<(bits-1)) != 0 {
					u |= ^uint32(0) << bits
				}
				c.Data[dst+x] = int32(u)
			}
		}
	}
	return nil
}

// PackPlane serializes one component plane at csiz granularity, little-endian.
// It is the inverse of the per-component step of UnpackTile and is used by
// engines to publish tile payloads.
func PackPlane(data []int32, csiz int, out []byte) error {
	if len(out) != len(data)*csiz {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrLengthMismatch, len(out), len(data)*csiz)
	}
	pos := 0
	for _, v := range data {
		u := uint32(v)
		switch csiz {
		case 1:
			out[pos] = byte(u)
			pos++
		case 2:
			out[pos] = byte(u)
			out[pos+1] = byte(u >> 8)
			pos += 2
		case 4:
			out[pos] = byte(u)
			out[pos+1] = byte(u >> 8)
			out[pos+2] = byte(u >> 16)
			out[pos+3] = byte(u >> 24)
			pos += 4
		default:
			return fmt.Errorf("pixel: unsupported sample width %d", csiz)
		}
	}
	return nil
}
