package gojp2k

import (
	"fmt"

	"github.com/cocosip/go-dicom-codec/jpeg2000"
	"github.com/cocosip/go-dicom-codec/jpeg2000/codestream"

	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/pixel"
	"github.com/cocosip/go-openjpeg/stream"
)

type decoderState int

const (
	decCreated decoderState = iota
	decHeader
	decYielded
	decDone
	decClosed
)

// decoder is one decoding session. The underlying codec decodes the whole
// codestream in one pass, so the session reads the full source at ReadHeader
// time, parses the main header without entropy decoding, and yields the
// decoded image as a single tile covering the full image region.
type decoder struct {
	params  *engine.DecodeParams
	state   decoderState
	data    []byte
	siz     *codestream.SIZSegment
	tiles   int
	img     *imagedata.Image
	dec     *jpeg2000.Decoder
	tile    engine.Tile
	decoded bool
}

func newDecoder(p *engine.DecodeParams) *decoder {
	return &decoder{params: p}
}

func (d *decoder) ReadHeader(src *stream.Source) (*imagedata.Image, error) {
	if d.state != decCreated {
		return nil, fmt.Errorf("gojp2k: header already read")
	}
	data, err := src.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("gojp2k: reading source: %w", err)
	}
	cs, err := codestream.NewParser(data).Parse()
	if err != nil {
		return nil, fmt.Errorf("gojp2k: parsing codestream: %w", err)
	}
	if cs.SIZ == nil {
		return nil, fmt.Errorf("gojp2k: codestream has no SIZ segment")
	}
	siz := cs.SIZ

	img := &imagedata.Image{
		X0:         siz.XOsiz,
		Y0:         siz.YOsiz,
		X1:         siz.Xsiz,
		Y1:         siz.Ysiz,
		ColorSpace: imagedata.ColorSpaceUnspecified,
		Comps:      make([]imagedata.Component, len(siz.Components)),
	}
	for i := range siz.Components {
		c := &siz.Components[i]
		dx := uint32(c.XRsiz)
		dy := uint32(c.YRsiz)
		if dx != 1 || dy != 1 {
			return nil, fmt.Errorf("gojp2k: component %d is subsampled (%dx%d), full-resolution components only", i, dx, dy)
		}
		img.Comps[i] = imagedata.Component{
			DX: dx, DY: dy,
			Prec:   c.BitDepth(),
			Signed: c.IsSigned(),
			X0:     imagedata.CeilDiv(siz.XOsiz, dx),
			Y0:     imagedata.CeilDiv(siz.YOsiz, dy),
			W:      imagedata.CeilDiv(siz.Xsiz, dx) - imagedata.CeilDiv(siz.XOsiz, dx),
			H:      imagedata.CeilDiv(siz.Ysiz, dy) - imagedata.CeilDiv(siz.YOsiz, dy),
		}
	}
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("gojp2k: invalid header geometry: %w", err)
	}

	if siz.XTsiz == 0 || siz.YTsiz == 0 {
		return nil, fmt.Errorf("gojp2k: invalid tile size %dx%d", siz.XTsiz, siz.YTsiz)
	}
	tx := imagedata.CeilDiv(siz.Xsiz-siz.XTOsiz, siz.XTsiz)
	ty := imagedata.CeilDiv(siz.Ysiz-siz.YTOsiz, siz.YTsiz)

	d.data = data
	d.siz = siz
	d.tiles = int(tx * ty)
	d.img = img
	d.state = decHeader
	d.params.Events.Emit(engine.SeverityInfo, fmt.Sprintf(
		"gojp2k: %dx%d, %d components, %d tiles",
		img.Width(), img.Height(), len(img.Comps), d.tiles))
	return img, nil
}

func (d *decoder) TileCount() int {
	return d.tiles
}

// SetDecodeArea accepts only the full image region; the underlying codec has
// no partial-decode support.
func (d *decoder) SetDecodeArea(img *imagedata.Image, x0, y0, x1, y1 uint32) error {
	if d.state != decHeader {
		return fmt.Errorf("gojp2k: decode area must be set after the header, before tiles")
	}
	if x0 == 0 && y0 == 0 && x1 == 0 && y1 == 0 {
		return nil
	}
	if x0 == img.X0 && y0 == img.Y0 && x1 == img.X1 && y1 == img.Y1 {
		return nil
	}
	return fmt.Errorf("gojp2k: partial decode area [%d,%d)x[%d,%d) not supported", x0, x1, y0, y1)
}

// NextTile performs the full decode on first call and yields one tile
// covering the image; subsequent calls report end of codestream.
func (d *decoder) NextTile(src *stream.Source) (*engine.Tile, bool, error) {
	switch d.state {
	case decHeader:
	case decYielded:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("gojp2k: tile loop outside a decode session")
	}

	dec := jpeg2000.NewDecoder()
	if err := dec.Decode(d.data); err != nil {
		return nil, false, fmt.Errorf("gojp2k: decoding codestream: %w", err)
	}
	if dec.Components() != len(d.img.Comps) {
		return nil, false, fmt.Errorf("gojp2k: decoded %d components, header declared %d",
			dec.Components(), len(d.img.Comps))
	}
	d.dec = dec

	var size uint32
	for i := range d.img.Comps {
		c := &d.img.Comps[i]
		size += c.W * c.H * uint32(pixel.BytesPerSample(c.Prec))
	}
	d.tile = engine.Tile{
		Index:    0,
		DataSize: size,
		X0:       int32(d.img.X0),
		Y0:       int32(d.img.Y0),
		X1:       int32(d.img.X1),
		Y1:       int32(d.img.Y1),
		NumComps: uint32(len(d.img.Comps)),
	}
	d.state = decYielded
	return &d.tile, true, nil
}

func (d *decoder) DecodeTile(src *stream.Source, t *engine.Tile, buf []byte) error {
	if d.state != decYielded || d.dec == nil {
		return fmt.Errorf("gojp2k: no tile pending")
	}
	if t.Index != d.tile.Index {
		return fmt.Errorf("gojp2k: unknown tile index %d", t.Index)
	}
	if uint32(len(buf)) < d.tile.DataSize {
		return fmt.Errorf("gojp2k: tile buffer too small: %d bytes, need %d", len(buf), d.tile.DataSize)
	}

	pos := 0
	for i := range d.img.Comps {
		c := &d.img.Comps[i]
		samples, err := d.dec.GetComponentData(i)
		if err != nil {
			return fmt.Errorf("gojp2k: component %d: %w", i, err)
		}
		want := int(c.W) * int(c.H)
		if len(samples) != want {
			return fmt.Errorf("gojp2k: component %d has %d samples, want %d", i, len(samples), want)
		}
		csiz := pixel.BytesPerSample(c.Prec)
		if err := pixel.PackPlane(samples, csiz, buf[pos:pos+want*csiz]); err != nil {
			return err
		}
		pos += want * csiz
	}
	d.decoded = true
	return nil
}

func (d *decoder) EndDecompress(src *stream.Source) error {
	switch d.state {
	case decHeader, decYielded:
		d.state = decDone
		return nil
	default:
		return fmt.Errorf("gojp2k: no decode session to finish")
	}
}

func (d *decoder) Close() error {
	d.data = nil
	d.dec = nil
	d.img = nil
	d.state = decClosed
	return nil
}
