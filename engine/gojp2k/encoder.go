package gojp2k

import (
	"fmt"
	"math"

	"github.com/cocosip/go-dicom-codec/jpeg2000"

	"github.com/cocosip/go-openjpeg/engine"
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/stream"
)

type encoderState int

const (
	encCreated encoderState = iota
	encSetup
	encStarted
	encEncoded
	encDone
	encClosed
)

// encoder is one encoding session. The underlying codec emits a complete
// codestream in one pass, so StartCompress and EndCompress only track the
// session phases and Encode writes the whole output.
type encoder struct {
	ep     *engine.EncodeParams
	state  encoderState
	params *jpeg2000.EncodeParams
	comps  [][]int32
}

func newEncoder(p *engine.EncodeParams) *encoder {
	return &encoder{ep: p}
}

func (e *encoder) Setup(img *imagedata.Image, p *engine.EncodeParams) error {
	if e.state != encCreated {
		return fmt.Errorf("gojp2k: encoder already set up")
	}
	if err := img.Validate(); err != nil {
		return fmt.Errorf("gojp2k: invalid image: %w", err)
	}
	first := &img.Comps[0]
	for i := range img.Comps {
		c := &img.Comps[i]
		if c.DX != 1 || c.DY != 1 {
			return fmt.Errorf("gojp2k: component %d is subsampled, full-resolution components only", i)
		}
		if c.Prec != first.Prec || c.Signed != first.Signed {
			return fmt.Errorf("gojp2k: component %d differs in precision or sign from component 0", i)
		}
		if c.Data == nil {
			return fmt.Errorf("gojp2k: component %d has no sample data", i)
		}
	}
	if first.Prec > 16 {
		return fmt.Errorf("gojp2k: precision %d exceeds the 16-bit encoding limit", first.Prec)
	}

	params := jpeg2000.DefaultEncodeParams(
		int(img.Width()), int(img.Height()), len(img.Comps), first.Prec, first.Signed)
	params.EnableMCT = p.UseMCT

	switch {
	case p.Lossless:
		params.Lossless = true
	case len(p.CompressionRatios) > 0:
		params.Lossless = false
		params.NumLayers = len(p.CompressionRatios)
		ratio := p.CompressionRatios[len(p.CompressionRatios)-1]
		params.TargetRatio = ratio
		params.Quality = qualityFromRatio(ratio)
	case len(p.SignalNoiseRatios) > 0:
		params.Lossless = false
		params.NumLayers = len(p.SignalNoiseRatios)
		params.Quality = qualityFromPSNR(p.SignalNoiseRatios[len(p.SignalNoiseRatios)-1])
	default:
		params.Lossless = true
	}

	e.comps = make([][]int32, len(img.Comps))
	for i := range img.Comps {
		e.comps[i] = img.Comps[i].Data
	}
	e.params = params
	e.state = encSetup
	p.Events.Emit(engine.SeverityInfo, fmt.Sprintf(
		"gojp2k: encoding %dx%d, %d components, %d-bit, lossless=%t",
		img.Width(), img.Height(), len(img.Comps), first.Prec, params.Lossless))
	return nil
}

func (e *encoder) StartCompress(dst *stream.Sink) error {
	if e.state != encSetup {
		return fmt.Errorf("gojp2k: compression must be started after setup")
	}
	e.state = encStarted
	return nil
}

func (e *encoder) Encode(dst *stream.Sink) error {
	if e.state != encStarted {
		return fmt.Errorf("gojp2k: encode called outside a compression session")
	}
	out, err := jpeg2000.NewEncoder(e.params).EncodeComponents(e.comps)
	if err != nil {
		return fmt.Errorf("gojp2k: encoding: %w", err)
	}
	if _, err := dst.Write(out); err != nil {
		return fmt.Errorf("gojp2k: writing codestream: %w", err)
	}
	e.state = encEncoded
	return nil
}

func (e *encoder) EndCompress(dst *stream.Sink) error {
	if e.state != encEncoded {
		return fmt.Errorf("gojp2k: nothing to finalize")
	}
	e.state = encDone
	return nil
}

func (e *encoder) Close() error {
	e.comps = nil
	e.params = nil
	e.state = encClosed
	return nil
}

// qualityFromRatio maps a compression ratio onto the codec's quality scale.
// Quality drops logarithmically with the target ratio.
func qualityFromRatio(ratio float64) int {
	if ratio <= 1 {
		return 100
	}
	return clampQuality(int(math.Round(100 - 15*math.Log2(ratio))))
}

// qualityFromPSNR maps a PSNR target in dB onto the quality scale. Targets
// around 50 dB and above are treated as near-lossless.
func qualityFromPSNR(psnr float64) int {
	if psnr <= 0 {
		return 100
	}
	return clampQuality(int(math.Round(psnr * 2)))
}

func clampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}
