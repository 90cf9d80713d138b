// Package engine defines the contract between the codestream boundary layer
// and a JPEG 2000 codec engine: the component that owns the wavelet
// transform, entropy coding and rate allocation. The boundary layer drives an
// engine through the Decoder and Encoder interfaces and treats it as opaque.
package engine

import (
	"github.com/cocosip/go-openjpeg/imagedata"
	"github.com/cocosip/go-openjpeg/stream"
)

// DecodeFormat selects the compressed input layout for decoding.
type DecodeFormat int

const (
	// DecodeJ2K is a raw JPEG 2000 codestream.
	DecodeJ2K DecodeFormat = 0
	// DecodeJPT is a JPT-stream (JPEG 2000, JPIP).
	DecodeJPT DecodeFormat = 1
	// DecodeJP2 is the boxed JP2 file format.
	DecodeJP2 DecodeFormat = 2
)

// EncodeFormat selects the output layout for encoding. The numbering differs
// from DecodeFormat deliberately; the two selectors are distinct enumerations.
type EncodeFormat int

const (
	// EncodeJ2K emits a raw JPEG 2000 codestream.
	EncodeJ2K EncodeFormat = 0
	// EncodeJP2 emits the boxed JP2 file format.
	EncodeJP2 EncodeFormat = 1
)

// Tile describes one tile yielded by a decoder: its index, the size of its
// decoded payload, its pixel bounds on the full-resolution reference grid,
// and its component count. When decoding under resolution reduction the
// boundary layer shifts the bounds down itself; the image descriptor from
// ReadHeader already carries the reduced geometry. A Tile is valid for one
// loop iteration.
type Tile struct {
	Index    uint32
	DataSize uint32
	X0, Y0   int32
	X1, Y1   int32
	NumComps uint32
}

// DecodeParams carries the knobs a decoder is configured with.
type DecodeParams struct {
	// Reduce discards the given number of highest resolution levels.
	Reduce int
	// Layers caps the number of quality layers decoded; 0 means all.
	Layers int
	// Threads is an opaque performance hint for engines with internal
	// parallelism; 0 leaves the engine default.
	Threads int
	// Events receives info/warning/error messages; nil discards them.
	Events EventHandler
}

// EncodeParams carries the coding configuration built by encode preparation.
type EncodeParams struct {
	// Lossless selects the reversible transform. When false, one of the two
	// layer lists below is non-empty and the irreversible transform is used.
	Lossless bool
	// CompressionRatios holds per-layer compression ratios (decode order).
	CompressionRatios []float64
	// SignalNoiseRatios holds per-layer PSNR targets in dB.
	SignalNoiseRatios []float64
	// UseMCT requests the multi-component transform.
	UseMCT bool
	// Threads is an opaque performance hint; 0 leaves the engine default.
	Threads int
	// Events receives info/warning/error messages; nil discards them.
	Events EventHandler
}

// Decoder is one decoding session over a single source stream. Sessions are
// single-use: after EndDecompress or a failure the decoder is only good for
// Close. Implementations are not safe for concurrent use.
type Decoder interface {
	// ReadHeader reads the main header and returns the image descriptor with
	// geometry, precision and colour-space populated but no sample data.
	ReadHeader(src *stream.Source) (*imagedata.Image, error)

	// TileCount reports the number of tiles declared by the header. Only
	// valid after ReadHeader.
	TileCount() int

	// SetDecodeArea restricts decoding to a sub-region of the image.
	// (0,0,0,0) selects the full image.
	SetDecodeArea(img *imagedata.Image, x0, y0, x1, y1 uint32) error

	// NextTile reads the next tile header. The second result is false when
	// the codestream has no more tiles.
	NextTile(src *stream.Source) (*Tile, bool, error)

	// DecodeTile decodes the payload of the tile last returned by NextTile
	// into buf, which must hold at least Tile.DataSize bytes. The payload is
	// planar per component at the component's storage width, little-endian.
	DecodeTile(src *stream.Source, t *Tile, buf []byte) error

	// EndDecompress finishes the session. Decoded results are not valid
	// until it returns nil.
	EndDecompress(src *stream.Source) error

	// Close releases the session's resources. Safe to call more than once.
	Close() error
}

// Encoder is one encoding session emitting a single codestream.
// Implementations are not safe for concurrent use.
type Encoder interface {
	// Setup validates the image descriptor against the engine's capabilities
	// and binds the coding parameters.
	Setup(img *imagedata.Image, p *EncodeParams) error

	// StartCompress writes the codestream headers.
	StartCompress(dst *stream.Sink) error

	// Encode compresses and writes the tile data.
	Encode(dst *stream.Sink) error

	// EndCompress finalizes the codestream. Output is not valid until it
	// returns nil.
	EndCompress(dst *stream.Sink) error

	// Close releases the session's resources. Safe to call more than once.
	Close() error
}

// Engine creates decoding and encoding sessions. An engine may reject
// formats it does not implement; rejection is a setup error, not a panic.
type Engine interface {
	// NewDecoder opens a decoding session for the given format.
	NewDecoder(format DecodeFormat, p *DecodeParams) (Decoder, error)

	// NewEncoder opens an encoding session for the given format.
	NewEncoder(format EncodeFormat, p *EncodeParams) (Encoder, error)

	// Name identifies the engine implementation.
	Name() string

	// Version reports the engine version as MAJOR.MINOR.PATCH.
	Version() string
}
