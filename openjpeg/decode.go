package openjpeg

import (
	"fmt"

	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/pixel"
	"github.com/cocosip/go-openjpeg/stream"
)

type decodeState int

const (
	stateStart decodeState = iota
	stateDecoding
	stateDone
	stateFailed
)

// Decoder runs one decode to completion. A Decoder is single-use: after a
// successful Decode it is done, and after a failure every further call
// returns the original error immediately. Not safe for concurrent use.
type Decoder struct {
	opts  DecodeOptions
	state decodeState
	err   error
}

// NewDecoder returns a decoder configured with opts; nil opts selects the
// defaults (full image, full resolution, default engine).
func NewDecoder(opts *DecodeOptions) *Decoder {
	d := &Decoder{}
	if opts != nil {
		d.opts = *opts
	}
	return d
}

// Decode is the convenience form of NewDecoder(opts).Decode(src, format).
func Decode(src *stream.Source, format engine.DecodeFormat, opts *DecodeOptions) ([]byte, error) {
	return NewDecoder(opts).Decode(src, format)
}

// Decode reads the codestream on src, decodes every tile, normalizes the
// colour space, upsamples subsampled components and returns the samples as
// an interleaved little-endian buffer of Parameters.BufferSize bytes.
// On failure the returned buffer is nil and the decoder is dead; a partially
// decoded image is never exposed.
func (d *Decoder) Decode(src *stream.Source, format engine.DecodeFormat) ([]byte, error) {
	switch d.state {
	case stateStart:
	case stateFailed:
		return nil, d.err
	default:
		return nil, coded(ErrDecodeFailed, nil, "decoder already used")
	}
	d.state = stateDecoding

	out, err := d.run(src, format)
	if err != nil {
		d.state = stateFailed
		d.err = err
		return nil, err
	}
	d.state = stateDone
	return out, nil
}

func (d *Decoder) run(src *stream.Source, format engine.DecodeFormat) ([]byte, error) {
	if src == nil {
		return nil, coded(ErrStreamCreate, nil, "nil source")
	}
	eng, err := defaultEngine(d.opts.Engine)
	if err != nil {
		return nil, err
	}
	dec, err := eng.NewDecoder(format, d.opts.engineParams())
	if err != nil {
		return nil, coded(ErrDecoderSetup, err, "engine %q rejected the decode request", eng.Name())
	}
	defer dec.Close()

	img, err := dec.ReadHeader(src)
	if err != nil {
		return nil, coded(ErrHeaderRead, err, "")
	}
	if n := len(img.Comps); n < 1 || n > 4 {
		return nil, coded(ErrBadComponents, nil, "%d components, want 1-4", n)
	}
	if img.ColorSpace == imagedata.ColorSpaceUnknown {
		return nil, coded(ErrBadComponents, nil, "unknown colour space")
	}

	var area Area
	if d.opts.Area != nil {
		area = *d.opts.Area
	}
	if err := dec.SetDecodeArea(img, area.X0, area.Y0, area.X1, area.Y1); err != nil {
		return nil, coded(ErrDecodeArea, err, "")
	}

	// Engines that only report geometry at header time leave the planes
	// unallocated.
	for ci := range img.Comps {
		c := &img.Comps[ci]
		if c.Data == nil {
			c.Data = make([]int32, int(c.W)*int(c.H))
		}
	}

	if err := d.tileLoop(dec, src, img); err != nil {
		return nil, err
	}
	if err := dec.EndDecompress(src); err != nil {
		return nil, coded(ErrDecodeFailed, err, "end of decompression failed")
	}

	// Raw codestreams carry no colour space metadata; three components with
	// matched luma factors and subsampled chroma is taken as sYCC.
	if img.ColorSpace != imagedata.ColorSpaceSYCC &&
		len(img.Comps) == 3 &&
		img.Comps[0].DX == img.Comps[0].DY &&
		img.Comps[1].DX != 1 {
		img.ColorSpace = imagedata.ColorSpaceSYCC
	}
	if img.ColorSpace == imagedata.ColorSpaceSYCC {
		syccToRGB(img)
	}

	img, err = upsampleComponents(img)
	if err != nil {
		return nil, coded(ErrUpsample, err, "")
	}

	c0 := &img.Comps[0]
	if c0.Prec > 32 {
		return nil, coded(ErrDecodePrecision, nil, "%d bits per sample", c0.Prec)
	}
	planes := make([][]int32, len(img.Comps))
	for i := range img.Comps {
		planes[i] = img.Comps[i].Data
	}
	out := make([]byte, int(c0.W)*int(c0.H)*len(planes)*pixel.BytesPerSample(c0.Prec))
	if err := pixel.Interleave(planes, c0.Prec, c0.Signed, out); err != nil {
		return nil, coded(ErrDecodeFailed, err, "packing output")
	}
	return out, nil
}

// tileLoop drains the tile iterator, decoding each payload into a reusable
// buffer and scattering the samples into the image planes.
func (d *Decoder) tileLoop(dec engine.Decoder, src *stream.Source, img *imagedata.Image) error {
	var buf []byte
	for {
		t, more, err := dec.NextTile(src)
		if err != nil {
			return coded(ErrDecodeFailed, err, "reading tile header")
		}
		if !more {
			return nil
		}

		if d.opts.Reduce > 0 {
			// Tile bounds are given at full resolution; shift them down,
			// rounding partial tiles up.
			corr := int32(1<<uint(d.opts.Reduce)) - 1
			t.X0 = (t.X0 + corr) >> uint(d.opts.Reduce)
			t.Y0 = (t.Y0 + corr) >> uint(d.opts.Reduce)
			t.X1 = (t.X1 + corr) >> uint(d.opts.Reduce)
			t.Y1 = (t.Y1 + corr) >> uint(d.opts.Reduce)
		}

		if int(t.DataSize) > len(buf) {
			buf = make([]byte, t.DataSize)
		}
		if err := dec.DecodeTile(src, t, buf); err != nil {
			return coded(ErrDecodeFailed, err, "decoding tile %d", t.Index)
		}
		if err := validateTileBounds(t, img); err != nil {
			return err
		}
		if err := pixel.UnpackTile(img, t, buf[:t.DataSize]); err != nil {
			return coded(ErrTileGeometry, err, "unpacking tile %d", t.Index)
		}
		d.opts.Events.Emit(engine.SeverityInfo, fmt.Sprintf(
			"tile %d: [%d,%d)x[%d,%d), %d bytes", t.Index, t.X0, t.X1, t.Y0, t.Y1, t.DataSize))
	}
}

func validateTileBounds(t *engine.Tile, img *imagedata.Image) error {
	if t.X0 >= t.X1 || t.Y0 >= t.Y1 {
		return coded(ErrTileGeometry, nil,
			"tile %d has degenerate bounds [%d,%d)x[%d,%d)", t.Index, t.X0, t.X1, t.Y0, t.Y1)
	}
	if t.X0 < int32(img.X0) || t.Y0 < int32(img.Y0) ||
		t.X1 > int32(img.X1) || t.Y1 > int32(img.Y1) {
		return coded(ErrTileGeometry, nil,
			"tile %d bounds [%d,%d)x[%d,%d) outside image [%d,%d)x[%d,%d)",
			t.Index, t.X0, t.X1, t.Y0, t.Y1, img.X0, img.X1, img.Y0, img.Y1)
	}
	return nil
}
