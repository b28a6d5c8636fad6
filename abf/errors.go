package abf

import "errors"

var (
	// ErrBadSignature is returned for files that are not ABF1 or ABF2.
	ErrBadSignature = errors.New("abf: unrecognized file signature")
	// ErrTruncated is returned when a header field or data block lies past
	// the end of the file.
	ErrTruncated = errors.New("abf: file truncated")
	// ErrUnsupportedFormat is returned for data formats other than int16
	// and float32.
	ErrUnsupportedFormat = errors.New("abf: unsupported data format")
	// ErrUnsupportedRecording is returned by SampleRate for values exposing
	// neither SampleRateHz nor DataRate.
	ErrUnsupportedRecording = errors.New("abf: unsupported recording interface (no sample rate accessor)")
	// ErrChannelRange is returned when the requested channel does not exist.
	ErrChannelRange = errors.New("abf: channel out of range")
	// ErrInvalidHeader is returned for headers with impossible values such
	// as a zero sample interval.
	ErrInvalidHeader = errors.New("abf: invalid header")
)
