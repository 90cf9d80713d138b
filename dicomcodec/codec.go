// Package dicomcodec exposes the JPEG 2000 boundary layer as DICOM
// transfer-syntax codecs: 1.2.840.10008.1.2.4.90 (lossless) and
// 1.2.840.10008.1.2.4.91 (lossy). Importing the package registers both
// codecs with the global registry.
package dicomcodec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"

	"github.com/cocosip/go-openjpeg/engine"
	_ "github.com/cocosip/go-openjpeg/engine/gojp2k"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/openjpeg"
	"github.com/cocosip/go-openjpeg/stream"
)

var _ codec.Codec = (*Codec)(nil)

var errLayerConflict = errors.New("compression ratios and signal-to-noise ratios are mutually exclusive")

// defaultRatio is the single-layer compression ratio the lossy codec uses
// when the caller supplies no quality layers.
const defaultRatio = 20.0

// Codec implements a JPEG 2000 DICOM codec backed by the openjpeg package.
type Codec struct {
	transferSyntax *transfer.Syntax
	lossless       bool
}

// NewLosslessCodec creates the JPEG 2000 Lossless codec (UID .90).
func NewLosslessCodec() *Codec {
	return &Codec{transferSyntax: transfer.JPEG2000Lossless, lossless: true}
}

// NewLossyCodec creates the JPEG 2000 lossy codec (UID .91).
func NewLossyCodec() *Codec {
	return &Codec{transferSyntax: transfer.JPEG2000}
}

// Name returns the codec name
func (c *Codec) Name() string {
	if c.lossless {
		return "JPEG 2000 Lossless"
	}
	return "JPEG 2000 Lossy"
}

// TransferSyntax returns the transfer syntax this codec handles
func (c *Codec) TransferSyntax() *transfer.Syntax {
	return c.transferSyntax
}

// GetDefaultParameters returns the default codec parameters
func (c *Codec) GetDefaultParameters() codec.Parameters {
	return NewParameters()
}

// Encode compresses every frame of oldPixelData into newPixelData. The
// lossless codec always selects the reversible transform; the lossy codec
// honours the quality layers in parameters, falling back to a single layer
// at the default ratio.
func (c *Codec) Encode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, parameters codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}
	frameInfo := oldPixelData.GetFrameInfo()
	if frameInfo == nil {
		return fmt.Errorf("failed to get frame info from source pixel data")
	}
	params := c.extractParameters(parameters)
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid JPEG 2000 parameters: %w", err)
	}
	opts := c.encodeOptions(params)

	frameCount := oldPixelData.FrameCount()
	if frameCount == 0 {
		return fmt.Errorf("source pixel data is empty (no frames)")
	}
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}
		encoded, err := openjpeg.EncodeBuffer(frameData,
			int(frameInfo.Width), int(frameInfo.Height),
			int(frameInfo.SamplesPerPixel), int(frameInfo.BitsStored),
			frameInfo.PixelRepresentation != 0,
			colorSpaceFor(frameInfo), opts)
		if err != nil {
			return fmt.Errorf("JPEG 2000 encode failed for frame %d: %w", frameIndex, err)
		}
		if err := newPixelData.AddFrame(encoded); err != nil {
			return fmt.Errorf("failed to add encoded frame %d: %w", frameIndex, err)
		}
	}
	return nil
}

// Decode decompresses every frame of oldPixelData into newPixelData.
func (c *Codec) Decode(oldPixelData imagetypes.PixelData, newPixelData imagetypes.PixelData, _ codec.Parameters) error {
	if oldPixelData == nil || newPixelData == nil {
		return fmt.Errorf("source and destination PixelData cannot be nil")
	}
	frameCount := oldPixelData.FrameCount()
	if frameCount == 0 {
		return fmt.Errorf("source pixel data is empty (no frames)")
	}
	for frameIndex := 0; frameIndex < frameCount; frameIndex++ {
		frameData, err := oldPixelData.GetFrame(frameIndex)
		if err != nil {
			return fmt.Errorf("failed to get frame %d: %w", frameIndex, err)
		}
		if len(frameData) == 0 {
			return fmt.Errorf("frame %d pixel data is empty", frameIndex)
		}
		src := stream.NewSource(bytes.NewReader(frameData))
		decoded, err := openjpeg.Decode(src, engine.DecodeJ2K, nil)
		if err != nil {
			return fmt.Errorf("JPEG 2000 decode failed for frame %d: %w", frameIndex, err)
		}
		if err := newPixelData.AddFrame(decoded); err != nil {
			return fmt.Errorf("failed to add decoded frame %d: %w", frameIndex, err)
		}
	}
	return nil
}

func (c *Codec) extractParameters(parameters codec.Parameters) *Parameters {
	if parameters == nil {
		return NewParameters()
	}
	if p, ok := parameters.(*Parameters); ok {
		return p
	}
	p := NewParameters()
	if v := parameters.GetParameter("compressionRatios"); v != nil {
		if r, ok := v.([]float64); ok {
			p.CompressionRatios = r
		}
	}
	if v := parameters.GetParameter("signalNoiseRatios"); v != nil {
		if r, ok := v.([]float64); ok {
			p.SignalNoiseRatios = r
		}
	}
	if v := parameters.GetParameter("useMCT"); v != nil {
		if b, ok := v.(bool); ok {
			p.UseMCT = b
		}
	}
	return p
}

func (c *Codec) encodeOptions(params *Parameters) *openjpeg.EncodeOptions {
	opts := &openjpeg.EncodeOptions{UseMCT: params.UseMCT}
	if c.lossless {
		return opts
	}
	opts.CompressionRatios = params.CompressionRatios
	opts.SignalNoiseRatios = params.SignalNoiseRatios
	if len(opts.CompressionRatios) == 0 && len(opts.SignalNoiseRatios) == 0 {
		opts.CompressionRatios = []float64{defaultRatio}
	}
	return opts
}

// colorSpaceFor maps the DICOM photometric interpretation onto a codestream
// colour space, falling back to the sample count when the string is absent
// or unrecognized.
func colorSpaceFor(frameInfo *imagetypes.FrameInfo) imagedata.ColorSpace {
	switch frameInfo.PhotometricInterpretation {
	case "MONOCHROME1", "MONOCHROME2", "PALETTE COLOR":
		return imagedata.ColorSpaceGray
	case "RGB":
		return imagedata.ColorSpaceSRGB
	case "YBR_FULL", "YBR_FULL_422", "YBR_ICT", "YBR_RCT":
		return imagedata.ColorSpaceSYCC
	}
	switch frameInfo.SamplesPerPixel {
	case 1:
		return imagedata.ColorSpaceGray
	case 3:
		return imagedata.ColorSpaceSRGB
	default:
		return imagedata.ColorSpaceUnspecified
	}
}

// RegisterJPEG2000LosslessCodec registers the lossless codec with the
// global registry.
func RegisterJPEG2000LosslessCodec() {
	codec.GetGlobalRegistry().RegisterCodec(transfer.JPEG2000Lossless, NewLosslessCodec())
}

// RegisterJPEG2000LossyCodec registers the lossy codec with the global
// registry.
func RegisterJPEG2000LossyCodec() {
	codec.GetGlobalRegistry().RegisterCodec(transfer.JPEG2000, NewLossyCodec())
}

func init() {
	RegisterJPEG2000LosslessCodec()
	RegisterJPEG2000LossyCodec()
}
