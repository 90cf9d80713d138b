package openjpeg

import (
	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/pixel"
	"github.com/cocosip/go-openjpeg/stream"
)

// maxQualityLayers caps either quality-layer list.
const maxQualityLayers = 100

// encodePrecisionLimit is the encode-side bit depth ceiling. Decoding
// accepts up to 32 bits; encoding stops at 24.
const encodePrecisionLimit = 24

// EncodeOptions configures EncodeBuffer and EncodeArray. The zero value
// encodes losslessly as a raw codestream with the default engine.
type EncodeOptions struct {
	// Engine overrides the registered default engine.
	Engine engine.Engine
	// Format selects the output layout.
	Format engine.EncodeFormat
	// CompressionRatios holds per-layer compression ratios. Mutually
	// exclusive with SignalNoiseRatios; either selects the irreversible
	// transform, except for the single-layer lossless signals (ratio 1.0,
	// SNR 0.0). Empty lists encode losslessly.
	CompressionRatios []float64
	// SignalNoiseRatios holds per-layer PSNR targets in dB.
	SignalNoiseRatios []float64
	// UseMCT requests the multi-component transform. Honored only for
	// 3-sample sRGB input; force-disabled otherwise.
	UseMCT bool
	// Threads is an opaque engine performance hint.
	Threads int
	// Events receives the engine's info/warning/error messages.
	Events engine.EventHandler
}

// DType identifies the sample type of a host array.
type DType int

const (
	DTypeBool DType = iota
	DTypeInt8
	DTypeUint8
	DTypeInt16
	DTypeUint16
	DTypeInt32
	DTypeUint32
)

// bits returns the container width in bits, or 0 for an unknown type.
func (t DType) bits() int {
	switch t {
	case DTypeBool, DTypeInt8, DTypeUint8:
		return 8
	case DTypeInt16, DTypeUint16:
		return 16
	case DTypeInt32, DTypeUint32:
		return 32
	default:
		return 0
	}
}

func (t DType) signed() bool {
	return t == DTypeInt8 || t == DTypeInt16 || t == DTypeInt32
}

// ArrayDescriptor describes a host-supplied C-contiguous array: row-major
// little-endian samples, shaped [rows, columns] for one sample per pixel or
// [rows, columns, samples] for colour data.
type ArrayDescriptor struct {
	Shape []int
	DType DType
	Data  []byte
}

// EncodeArray validates the host array's shape and sample type and encodes
// it. bitsStored is the number of significant bits per sample; it must fit
// the array's container type.
func EncodeArray(arr *ArrayDescriptor, bitsStored int, pi imagedata.ColorSpace, opts *EncodeOptions) ([]byte, error) {
	var rows, columns, spp int
	switch len(arr.Shape) {
	case 2:
		rows, columns = arr.Shape[0], arr.Shape[1]
		spp = 1
	case 3:
		if arr.Shape[2] != 3 && arr.Shape[2] != 4 {
			return nil, coded(ErrBadSamplesPerPix, nil, "third axis is %d", arr.Shape[2])
		}
		rows, columns, spp = arr.Shape[0], arr.Shape[1], arr.Shape[2]
	default:
		return nil, coded(ErrBadShape, nil, "%d dimensions", len(arr.Shape))
	}

	bitsAllocated := arr.DType.bits()
	if bitsAllocated == 0 {
		return nil, coded(ErrBadSampleType, nil, "sample type %d", arr.DType)
	}
	if bitsStored < 1 || bitsStored > bitsAllocated {
		return nil, coded(ErrEncodePrecision, nil,
			"bits stored %d with a %d-bit sample type", bitsStored, bitsAllocated)
	}
	return EncodeBuffer(arr.Data, columns, rows, spp, bitsStored, arr.DType.signed(), pi, opts)
}

// EncodeBuffer encodes a flat interleaved little-endian byte buffer. The
// buffer length must equal rows*columns*spp*bytesPerSample exactly, where
// bytesPerSample follows from bitsStored (1, 2 or 4).
func EncodeBuffer(data []byte, columns, rows, spp, bitsStored int, signed bool,
	pi imagedata.ColorSpace, opts *EncodeOptions) ([]byte, error) {
	if opts == nil {
		opts = &EncodeOptions{}
	}

	if rows < 1 || rows > 65535 {
		return nil, coded(ErrBadRows, nil, "%d rows", rows)
	}
	if columns < 1 || columns > 65535 {
		return nil, coded(ErrBadColumns, nil, "%d columns", columns)
	}
	if spp != 1 && spp != 3 && spp != 4 {
		return nil, coded(ErrBadSamplesPerPix, nil, "%d samples per pixel", spp)
	}
	if bitsStored < 1 || bitsStored > encodePrecisionLimit {
		return nil, coded(ErrEncodePrecision, nil, "%d bits stored, want 1-%d", bitsStored, encodePrecisionLimit)
	}
	if err := validateInterpretation(spp, pi); err != nil {
		return nil, err
	}
	if len(opts.CompressionRatios) > maxQualityLayers {
		return nil, coded(ErrTooManyLayers, nil, "%d compression ratios", len(opts.CompressionRatios))
	}
	if len(opts.SignalNoiseRatios) > maxQualityLayers {
		return nil, coded(ErrTooManyLayers, nil, "%d signal-to-noise ratios", len(opts.SignalNoiseRatios))
	}
	if len(opts.CompressionRatios) > 0 && len(opts.SignalNoiseRatios) > 0 {
		return nil, coded(ErrLayerConflict, nil, "")
	}

	bps := pixel.BytesPerSample(bitsStored)
	want := rows * columns * spp * bps
	if len(data) != want {
		return nil, coded(ErrBufferLength, nil, "got %d bytes, want %d", len(data), want)
	}

	planes, err := pixel.Deinterleave(data, rows, columns, spp, bps, signed)
	if err != nil {
		return nil, coded(ErrBufferLength, err, "")
	}
	img, err := imagedata.New(0, 0, uint32(columns), uint32(rows), spp, bitsStored, signed, pi)
	if err != nil {
		return nil, coded(ErrBadShape, err, "")
	}
	for i := range img.Comps {
		img.Comps[i].Data = planes[i]
	}

	params := &engine.EncodeParams{
		CompressionRatios: opts.CompressionRatios,
		SignalNoiseRatios: opts.SignalNoiseRatios,
		UseMCT:            opts.UseMCT && spp == 3 && pi == imagedata.ColorSpaceSRGB,
		Threads:           opts.Threads,
		Events:            opts.Events,
	}
	params.Lossless = losslessRequested(opts)
	if params.Lossless {
		params.CompressionRatios = nil
		params.SignalNoiseRatios = nil
	}

	eng, err := defaultEngine(opts.Engine)
	if err != nil {
		return nil, coded(ErrEncoderCreate, err, "")
	}
	enc, err := eng.NewEncoder(opts.Format, params)
	if err != nil {
		return nil, coded(ErrEncoderCreate, err, "engine %q rejected the encode request", eng.Name())
	}
	defer enc.Close()

	if err := enc.Setup(img, params); err != nil {
		return nil, coded(ErrEncoderSetup, err, "")
	}
	buf := stream.NewBuffer()
	dst := stream.NewSink(buf)
	if err := enc.StartCompress(dst); err != nil {
		return nil, coded(ErrCompressFailed, err, "starting compression")
	}
	if err := enc.Encode(dst); err != nil {
		return nil, coded(ErrCompressFailed, err, "")
	}
	if err := enc.EndCompress(dst); err != nil {
		return nil, coded(ErrCompressFailed, err, "finalizing the codestream")
	}
	return buf.Bytes(), nil
}

// validateInterpretation checks the declared photometric interpretation
// against the sample count.
func validateInterpretation(spp int, pi imagedata.ColorSpace) error {
	if pi < imagedata.ColorSpaceUnspecified || pi > imagedata.ColorSpaceCMYK {
		return coded(ErrBadInterpretation, nil, "code %d", int(pi))
	}
	switch spp {
	case 1:
		if pi != imagedata.ColorSpaceUnspecified && pi != imagedata.ColorSpaceGray {
			return coded(ErrInterpretation1, nil, "%s", pi)
		}
	case 3:
		switch pi {
		case imagedata.ColorSpaceUnspecified, imagedata.ColorSpaceSRGB,
			imagedata.ColorSpaceSYCC, imagedata.ColorSpaceEYCC:
		default:
			return coded(ErrInterpretation3, nil, "%s", pi)
		}
	case 4:
		if pi != imagedata.ColorSpaceUnspecified && pi != imagedata.ColorSpaceCMYK {
			return coded(ErrInterpretation4, nil, "%s", pi)
		}
	}
	return nil
}

// losslessRequested reports whether the options select the reversible
// transform: both layer lists empty, or a single layer at ratio 1.0 or
// SNR 0.0.
func losslessRequested(opts *EncodeOptions) bool {
	if len(opts.CompressionRatios) == 0 && len(opts.SignalNoiseRatios) == 0 {
		return true
	}
	if len(opts.CompressionRatios) == 1 && opts.CompressionRatios[0] == 1.0 {
		return true
	}
	if len(opts.SignalNoiseRatios) == 1 && opts.SignalNoiseRatios[0] == 0.0 {
		return true
	}
	return false
}
