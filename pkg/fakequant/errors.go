package fakequant

import "errors"

var (
	// ErrTypeMismatch is returned when an input tensor's element type is not
	// the supported single-precision float kind.
	ErrTypeMismatch = errors.New("fakequant: unsupported element type")

	// ErrInvalidArgument is returned for quantization parameters that violate
	// their preconditions, and for mismatched input sizes.
	ErrInvalidArgument = errors.New("fakequant: invalid argument")

	// ErrEmptyInput is returned by Backward when the forward input tensor has
	// no elements.
	ErrEmptyInput = errors.New("fakequant: input is empty")
)
