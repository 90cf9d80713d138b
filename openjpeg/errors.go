package openjpeg

import "fmt"

// ErrorKind groups failures into the boundary layer's closed taxonomy.
type ErrorKind int

const (
	// KindStream covers stream creation and read/write/seek failures
	// reported by the byte stream, and compression output failures.
	KindStream ErrorKind = iota
	// KindSetup covers decoder/encoder configuration rejected by the codec
	// engine, including unreadable headers.
	KindSetup
	// KindGeometry covers invalid tile bounds, invalid image dimensions and
	// invalid subsampling offsets.
	KindGeometry
	// KindValidation covers unsupported sample types, unsupported
	// samples-per-pixel, precision/interpretation mismatches, buffer-length
	// mismatches and bad quality-layer configurations.
	KindValidation
	// KindCapability covers precisions beyond the supported bit widths:
	// 24 bits for encode, 32 bits for decode.
	KindCapability
)

// String returns the kind label.
func (k ErrorKind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindSetup:
		return "setup"
	case KindGeometry:
		return "geometry"
	case KindValidation:
		return "validation"
	case KindCapability:
		return "capability"
	default:
		return "unknown"
	}
}

// Error is a coded boundary-layer failure. Code preserves the small-integer
// codes of the C interface so hosts keeping code-based dispatch still can;
// Kind classifies the failure for Go callers. Two Errors match under
// errors.Is when kind and code agree, so the exported sentinels below work
// as targets for wrapped errors.
type Error struct {
	Kind  ErrorKind
	Code  int
	msg   string
	cause error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("openjpeg: %s error %d", e.Kind, e.Code)
	if e.msg != "" {
		s += ": " + e.msg
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same kind and code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Code == e.Code
}

// coded builds a failure matching one of the sentinels, carrying detail.
func coded(sentinel *Error, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:  sentinel.Kind,
		Code:  sentinel.Code,
		msg:   fmt.Sprintf(format, args...),
		cause: cause,
	}
}

// Decode-path sentinels. The codes follow the C interface's decode ladder:
// stream creation 1, decoder setup 2, header read 3, component validation 4,
// decode area 5, tile loop 6, precision 7, upsampling 8.
var (
	ErrStreamCreate    = &Error{Kind: KindStream, Code: 1, msg: "no byte stream"}
	ErrDecoderSetup    = &Error{Kind: KindSetup, Code: 2, msg: "decoder setup failed"}
	ErrHeaderRead      = &Error{Kind: KindSetup, Code: 3, msg: "failed to read the header"}
	ErrBadComponents   = &Error{Kind: KindValidation, Code: 4, msg: "unsupported component layout"}
	ErrDecodeArea      = &Error{Kind: KindGeometry, Code: 5, msg: "failed to set the decode area"}
	ErrDecodeFailed    = &Error{Kind: KindSetup, Code: 6, msg: "failed to decode the codestream"}
	ErrTileGeometry    = &Error{Kind: KindGeometry, Code: 6, msg: "invalid tile geometry"}
	ErrDecodePrecision = &Error{Kind: KindCapability, Code: 7, msg: "precision beyond 32 bits"}
	ErrUpsample        = &Error{Kind: KindGeometry, Code: 8, msg: "failed to upsample components"}
)

// Encode-path sentinels.
var (
	ErrBadShape          = &Error{Kind: KindValidation, Code: 1, msg: "array must have 2 or 3 dimensions"}
	ErrBadSamplesPerPix  = &Error{Kind: KindValidation, Code: 2, msg: "samples per pixel must be 1, 3 or 4"}
	ErrBadSampleType     = &Error{Kind: KindValidation, Code: 3, msg: "unsupported sample type"}
	ErrBadRows           = &Error{Kind: KindGeometry, Code: 5, msg: "rows must be in [1, 65535]"}
	ErrBadColumns        = &Error{Kind: KindGeometry, Code: 6, msg: "columns must be in [1, 65535]"}
	ErrEncodePrecision   = &Error{Kind: KindCapability, Code: 8, msg: "bits stored out of range"}
	ErrBadInterpretation = &Error{Kind: KindValidation, Code: 9, msg: "unknown photometric interpretation"}
	ErrInterpretation1   = &Error{Kind: KindValidation, Code: 10, msg: "interpretation not valid for 1 sample per pixel"}
	ErrInterpretation3   = &Error{Kind: KindValidation, Code: 11, msg: "interpretation not valid for 3 samples per pixel"}
	ErrInterpretation4   = &Error{Kind: KindValidation, Code: 12, msg: "interpretation not valid for 4 samples per pixel"}
	ErrBufferLength      = &Error{Kind: KindValidation, Code: 13, msg: "buffer length does not match the image"}
	ErrTooManyLayers     = &Error{Kind: KindValidation, Code: 14, msg: "more than 100 quality layers"}
	ErrLayerConflict     = &Error{Kind: KindValidation, Code: 15, msg: "compression ratios and signal-to-noise ratios are mutually exclusive"}
	ErrEncoderCreate     = &Error{Kind: KindSetup, Code: 16, msg: "failed to create the encoder"}
	ErrEncoderSetup      = &Error{Kind: KindSetup, Code: 17, msg: "encoder setup failed"}
	ErrCompressFailed    = &Error{Kind: KindStream, Code: 18, msg: "failed to write the codestream"}
)
