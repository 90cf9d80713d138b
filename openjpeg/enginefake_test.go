package openjpeg

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/pixel"
	"github.com/cocosip/go-openjpeg/stream"
)

// fakeTile pairs a tile header with its planar payload.
type fakeTile struct {
	tile    engine.Tile
	payload []byte
}

// fakeEngine is a scriptable engine for exercising the boundary layer
// without entropy coding: the decoder serves a prepared header and tile
// list, the encoder records what it is given.
type fakeEngine struct {
	header *imagedata.Image
	tiles  []fakeTile

	headerErr error
	decodeErr error
	endErr    error

	decoderCloses int
	encoderCloses int

	encImg    *imagedata.Image
	encParams *engine.EncodeParams
	encOut    []byte
	setupErr  error
}

func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) Version() string { return "0.0.0" }

func (f *fakeEngine) NewDecoder(format engine.DecodeFormat, p *engine.DecodeParams) (engine.Decoder, error) {
	return &fakeDecoder{f: f}, nil
}

func (f *fakeEngine) NewEncoder(format engine.EncodeFormat, p *engine.EncodeParams) (engine.Encoder, error) {
	return &fakeEncoder{f: f}, nil
}

type fakeDecoder struct {
	f    *fakeEngine
	next int
}

// copyHeader returns the served descriptor with unallocated planes, the way
// a header-only read reports it.
func (d *fakeDecoder) ReadHeader(src *stream.Source) (*imagedata.Image, error) {
	if d.f.headerErr != nil {
		return nil, d.f.headerErr
	}
	h := d.f.header
	img := &imagedata.Image{
		X0: h.X0, Y0: h.Y0, X1: h.X1, Y1: h.Y1,
		ColorSpace: h.ColorSpace,
		Comps:      make([]imagedata.Component, len(h.Comps)),
	}
	for i := range h.Comps {
		img.Comps[i] = h.Comps[i]
		img.Comps[i].Data = nil
	}
	return img, nil
}

func (d *fakeDecoder) TileCount() int { return len(d.f.tiles) }

func (d *fakeDecoder) SetDecodeArea(img *imagedata.Image, x0, y0, x1, y1 uint32) error {
	return nil
}

func (d *fakeDecoder) NextTile(src *stream.Source) (*engine.Tile, bool, error) {
	if d.next >= len(d.f.tiles) {
		return nil, false, nil
	}
	t := d.f.tiles[d.next].tile
	return &t, true, nil
}

func (d *fakeDecoder) DecodeTile(src *stream.Source, t *engine.Tile, buf []byte) error {
	if d.f.decodeErr != nil {
		return d.f.decodeErr
	}
	payload := d.f.tiles[d.next].payload
	if len(buf) < len(payload) {
		return fmt.Errorf("buffer too small: %d < %d", len(buf), len(payload))
	}
	copy(buf, payload)
	d.next++
	return nil
}

func (d *fakeDecoder) EndDecompress(src *stream.Source) error { return d.f.endErr }

func (d *fakeDecoder) Close() error {
	d.f.decoderCloses++
	return nil
}

type fakeEncoder struct {
	f       *fakeEngine
	started bool
}

func (e *fakeEncoder) Setup(img *imagedata.Image, p *engine.EncodeParams) error {
	if e.f.setupErr != nil {
		return e.f.setupErr
	}
	e.f.encImg = img
	e.f.encParams = p
	return nil
}

func (e *fakeEncoder) StartCompress(dst *stream.Sink) error {
	e.started = true
	return nil
}

func (e *fakeEncoder) Encode(dst *stream.Sink) error {
	if !e.started {
		return errors.New("not started")
	}
	out := e.f.encOut
	if out == nil {
		out = []byte{0xFF, 0x4F} // SOC, just so output is non-empty
	}
	_, err := dst.Write(out)
	return err
}

func (e *fakeEncoder) EndCompress(dst *stream.Sink) error { return nil }

func (e *fakeEncoder) Close() error {
	e.f.encoderCloses++
	return nil
}

// tilePayload serializes the samples of img covered by tile bounds in the
// planar layout decoders publish: per component, the tile's intersection
// with the component grid, row-major, little-endian.
func tilePayload(img *imagedata.Image, t *engine.Tile) []byte {
	var out []byte
	for ci := range img.Comps {
		c := &img.Comps[ci]
		cx0 := imagedata.CeilDiv(uint32(t.X0), c.DX)
		cy0 := imagedata.CeilDiv(uint32(t.Y0), c.DY)
		cx1 := imagedata.CeilDiv(uint32(t.X1), c.DX)
		cy1 := imagedata.CeilDiv(uint32(t.Y1), c.DY)
		csiz := pixel.BytesPerSample(c.Prec)
		for y := cy0; y < cy1; y++ {
			for x := cx0; x < cx1; x++ {
				v := uint32(c.Data[(y-c.Y0)*c.W+(x-c.X0)])
				out = append(out, byte(v))
				if csiz > 1 {
					out = append(out, byte(v>>8))
				}
				if csiz > 2 {
					out = append(out, byte(v>>16), byte(v>>24))
				}
			}
		}
	}
	return out
}

// fakeFromImage scripts an engine that decodes img through a grid of
// tileW x tileH tiles.
func fakeFromImage(img *imagedata.Image, tileW, tileH uint32) *fakeEngine {
	f := &fakeEngine{header: img}
	idx := uint32(0)
	for y0 := img.Y0; y0 < img.Y1; y0 += tileH {
		for x0 := img.X0; x0 < img.X1; x0 += tileW {
			x1 := x0 + tileW
			if x1 > img.X1 {
				x1 = img.X1
			}
			y1 := y0 + tileH
			if y1 > img.Y1 {
				y1 = img.Y1
			}
			t := engine.Tile{
				Index:    idx,
				X0:       int32(x0),
				Y0:       int32(y0),
				X1:       int32(x1),
				Y1:       int32(y1),
				NumComps: uint32(len(img.Comps)),
			}
			payload := tilePayload(img, &t)
			t.DataSize = uint32(len(payload))
			f.tiles = append(f.tiles, fakeTile{tile: t, payload: payload})
			idx++
		}
	}
	return f
}

// emptySource returns a non-nil source; the fake engine never reads it.
func emptySource() *stream.Source {
	return stream.NewSource(bytes.NewReader(nil))
}
