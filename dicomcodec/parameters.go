package dicomcodec

import (
	"github.com/cocosip/go-dicom/pkg/imaging/codec"
)

var _ codec.Parameters = (*Parameters)(nil)

// Parameters configures the JPEG 2000 transfer-syntax codecs. The zero
// value (or NewParameters) selects a lossless encode; quality layers make
// the lossy codec irreversible.
type Parameters struct {
	// CompressionRatios holds per-layer compression ratios for the lossy
	// codec. Mutually exclusive with SignalNoiseRatios.
	CompressionRatios []float64

	// SignalNoiseRatios holds per-layer PSNR targets in dB.
	SignalNoiseRatios []float64

	// UseMCT requests the multi-component transform for RGB input.
	UseMCT bool

	// internal storage for compatibility with the generic parameter interface
	params map[string]interface{}
}

// NewParameters creates Parameters with default values.
func NewParameters() *Parameters {
	return &Parameters{
		UseMCT: true,
		params: make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *Parameters) GetParameter(name string) interface{} {
	switch name {
	case "compressionRatios":
		return p.CompressionRatios
	case "signalNoiseRatios":
		return p.SignalNoiseRatios
	case "useMCT":
		return p.UseMCT
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *Parameters) SetParameter(name string, value interface{}) {
	switch name {
	case "compressionRatios":
		if v, ok := value.([]float64); ok {
			p.CompressionRatios = v
		}
	case "signalNoiseRatios":
		if v, ok := value.([]float64); ok {
			p.SignalNoiseRatios = v
		}
	case "useMCT":
		if v, ok := value.(bool); ok {
			p.UseMCT = v
		}
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// Validate checks if the parameters are valid.
func (p *Parameters) Validate() error {
	if len(p.CompressionRatios) > 0 && len(p.SignalNoiseRatios) > 0 {
		return errLayerConflict
	}
	return nil
}

// WithCompressionRatios sets the ratio layers and returns the parameters
// for chaining.
func (p *Parameters) WithCompressionRatios(ratios ...float64) *Parameters {
	p.CompressionRatios = ratios
	return p
}

// WithSignalNoiseRatios sets the PSNR layers and returns the parameters
// for chaining.
func (p *Parameters) WithSignalNoiseRatios(snrs ...float64) *Parameters {
	p.SignalNoiseRatios = snrs
	return p
}

// WithMCT sets the multi-component transform flag and returns the
// parameters for chaining.
func (p *Parameters) WithMCT(use bool) *Parameters {
	p.UseMCT = use
	return p
}
