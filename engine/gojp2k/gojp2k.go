// Package gojp2k provides the default codec engine, backed by the pure-Go
// JPEG 2000 implementation in github.com/cocosip/go-dicom-codec/jpeg2000.
//
// The engine handles raw codestreams only (DecodeJ2K / EncodeJ2K) and
// full-resolution components with precisions up to 16 bits. Requests outside
// those capabilities are rejected at session setup; the boundary layer maps
// such rejections to setup errors rather than decode failures.
package gojp2k

import (
	"fmt"

	"github.com/cocosip/go-openjpeg/engine"
)

// version tracks the underlying go-dicom-codec release.
const version = "0.2.1"

// Engine is the go-dicom-codec backed engine. The zero value is ready to use.
type Engine struct{}

// New returns the engine.
func New() *Engine {
	return &Engine{}
}

// Name returns "gojp2k".
func (e *Engine) Name() string { return "gojp2k" }

// Version reports the underlying codec release.
func (e *Engine) Version() string { return version }

// NewDecoder opens a decoding session. Only DecodeJ2K is supported, and the
// session must not request resolution or layer reduction.
func (e *Engine) NewDecoder(format engine.DecodeFormat, p *engine.DecodeParams) (engine.Decoder, error) {
	if format != engine.DecodeJ2K {
		return nil, fmt.Errorf("gojp2k: decode format %d not supported (raw codestream only)", format)
	}
	if p == nil {
		p = &engine.DecodeParams{}
	}
	if p.Reduce != 0 {
		return nil, fmt.Errorf("gojp2k: resolution reduction not supported")
	}
	if p.Layers != 0 {
		return nil, fmt.Errorf("gojp2k: layer truncation not supported")
	}
	return newDecoder(p), nil
}

// NewEncoder opens an encoding session. Only EncodeJ2K is supported.
func (e *Engine) NewEncoder(format engine.EncodeFormat, p *engine.EncodeParams) (engine.Encoder, error) {
	if format != engine.EncodeJ2K {
		return nil, fmt.Errorf("gojp2k: encode format %d not supported (raw codestream only)", format)
	}
	if p == nil {
		p = &engine.EncodeParams{}
	}
	return newEncoder(p), nil
}

func init() {
	engine.Register(New())
}
