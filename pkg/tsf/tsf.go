// Package tsf implements the Tensor Snapshot File format: a minimal binary
// container for a single dense tensor, used to feed large inputs to the CLI
// without JSON overhead.
//
// Layout (all integers little-endian):
//
//	magic   [4]byte  "TSF\x00"
//	major   uint16
//	minor   uint16
//	dtype   uint32
//	rank    uint32
//	size    uint64   payload size in bytes
//	dims    rank * uint64
//	payload size bytes of packed elements
package tsf

import "errors"

const (
	Magic = "TSF\x00"

	// CurrentMajor is bumped for breaking layout changes only.
	CurrentMajor uint16 = 1
	CurrentMinor uint16 = 0

	headerSize = 4 + 2 + 2 + 4 + 4 + 8
)

var (
	ErrInvalidMagic     = errors.New("tsf: invalid magic")
	ErrUnsupportedMajor = errors.New("tsf: unsupported major version")
	ErrCorruptFile      = errors.New("tsf: corrupt file")
)

// Header describes the stored tensor.
type Header struct {
	Major uint16
	Minor uint16
	DType uint32
	Dims  []uint64
	Size  uint64
}

func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor
}
