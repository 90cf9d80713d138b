// Package openjpeg is the JPEG 2000 codestream boundary layer: it parses
// main headers, drives a codec engine through the tile decode loop, converts
// sYCC-coded images to RGB, upsamples subsampled components and packs the
// decoded samples into flat little-endian interleaved buffers; on the encode
// side it validates the host image description, builds the component planes
// and drives the engine to emit a codestream.
//
// The wavelet transform and entropy coding belong to the codec engine
// (engine.Engine); the default engine lives in engine/gojp2k and is
// registered by importing that package:
//
//	import _ "github.com/cocosip/go-openjpeg/engine/gojp2k"
package openjpeg

import "github.com/cocosip/go-openjpeg/engine"

// DefaultEngine is the registry name of the engine used when options carry
// no explicit engine.
const DefaultEngine = "gojp2k"

// Version reports the default engine's version, or "unknown" when no engine
// is registered under DefaultEngine.
func Version() string {
	if e, ok := engine.Get(DefaultEngine); ok {
		return e.Version()
	}
	return "unknown"
}

// defaultEngine resolves the engine for a call.
func defaultEngine(e engine.Engine) (engine.Engine, error) {
	if e != nil {
		return e, nil
	}
	if e, ok := engine.Get(DefaultEngine); ok {
		return e, nil
	}
	return nil, coded(ErrDecoderSetup, nil, "no codec engine registered as %q", DefaultEngine)
}
