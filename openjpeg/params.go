package openjpeg

import (
	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/pixel"
	"github.com/cocosip/go-openjpeg/stream"
)

// Area restricts decoding to a sub-region of the reference grid.
type Area struct {
	X0, Y0, X1, Y1 uint32
}

// DecodeOptions configures GetParameters and Decode. The zero value decodes
// the full image at full resolution with the default engine.
type DecodeOptions struct {
	// Engine overrides the registered default engine.
	Engine engine.Engine
	// Reduce discards the given number of highest resolution levels.
	Reduce int
	// Layers caps the quality layers decoded; 0 decodes all.
	Layers int
	// Area selects a sub-region; nil decodes the full image.
	Area *Area
	// Threads is an opaque engine performance hint.
	Threads int
	// Events receives the engine's info/warning/error messages.
	Events engine.EventHandler
}

func (o *DecodeOptions) engineParams() *engine.DecodeParams {
	return &engine.DecodeParams{
		Reduce:  o.Reduce,
		Layers:  o.Layers,
		Threads: o.Threads,
		Events:  o.Events,
	}
}

// Parameters is the image metadata extracted from a codestream's main
// header, without decoding any tile data.
type Parameters struct {
	Columns         uint32
	Rows            uint32
	ColorSpace      imagedata.ColorSpace
	SamplesPerPixel int
	Precision       int
	IsSigned        bool
	TileCount       int
}

// BufferSize returns the byte length of the decode output buffer for these
// parameters: rows * columns * samples per pixel * bytes per sample.
func (p *Parameters) BufferSize() int {
	return int(p.Rows) * int(p.Columns) * p.SamplesPerPixel * pixel.BytesPerSample(p.Precision)
}

// GetParameters reads the main header of the codestream on src and returns
// the image parameters. The stream position is left wherever the header read
// finished; callers must not assume it is restored. opts may be nil.
func GetParameters(src *stream.Source, format engine.DecodeFormat, opts *DecodeOptions) (*Parameters, error) {
	if opts == nil {
		opts = &DecodeOptions{}
	}
	if src == nil {
		return nil, coded(ErrStreamCreate, nil, "nil source")
	}
	eng, err := defaultEngine(opts.Engine)
	if err != nil {
		return nil, err
	}
	dec, err := eng.NewDecoder(format, opts.engineParams())
	if err != nil {
		return nil, coded(ErrDecoderSetup, err, "engine %q rejected the decode request", eng.Name())
	}
	defer dec.Close()

	img, err := dec.ReadHeader(src)
	if err != nil {
		return nil, coded(ErrHeaderRead, err, "")
	}
	c0 := &img.Comps[0]
	return &Parameters{
		Columns:         img.Width(),
		Rows:            img.Height(),
		ColorSpace:      img.ColorSpace,
		SamplesPerPixel: len(img.Comps),
		Precision:       c0.Prec,
		IsSigned:        c0.Signed,
		TileCount:       dec.TileCount(),
	}, nil
}
