package tsf

import (
	"encoding/binary"
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/fakequant/pkg/tensor"
)

// File is an opened snapshot. It must be closed to release any mapping.
type File struct {
	Header  *Header
	data    []byte
	mmapped bool
}

// Open maps a snapshot file read-only and validates its structure. If mmap is
// unavailable, it falls back to ReadAt-based loading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < headerSize {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)

	// Prefer mmap where available so the payload is not read until decoded.
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		tf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return tf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates a snapshot from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < headerSize || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// Close releases the mapping, if any. The file and any tensors decoded from
// it remain valid; decoding always copies.
func (f *File) Close() error {
	if !f.mmapped || f.data == nil {
		f.data = nil
		return nil
	}
	data := f.data
	f.data = nil
	f.mmapped = false
	return unix.Munmap(data)
}

// Tensor decodes the payload into a new tensor. The result never aliases the
// underlying mapping.
func (f *File) Tensor() (*tensor.Tensor, error) {
	if f.data == nil {
		return nil, ErrCorruptFile
	}
	h := f.Header
	shape := make([]int, len(h.Dims))
	for i, d := range h.Dims {
		shape[i] = int(d)
	}
	payload := f.data[headerSize+8*len(h.Dims):]
	raw := append([]byte(nil), payload...)
	t, err := tensor.NewFromRaw(raw, tensor.DType(h.DType), shape...)
	if err != nil {
		return nil, ErrCorruptFile
	}
	return t, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	if len(data) < headerSize {
		return nil, ErrCorruptFile
	}
	if string(data[:4]) != Magic {
		return nil, ErrInvalidMagic
	}
	h := &Header{
		Major: binary.LittleEndian.Uint16(data[4:]),
		Minor: binary.LittleEndian.Uint16(data[6:]),
		DType: binary.LittleEndian.Uint32(data[8:]),
		Size:  binary.LittleEndian.Uint64(data[16:]),
	}
	if !h.Compatible() {
		return nil, ErrUnsupportedMajor
	}
	rank := binary.LittleEndian.Uint32(data[12:])
	if rank > 64 {
		return nil, ErrCorruptFile
	}
	dimsEnd := headerSize + 8*int(rank)
	if len(data) < dimsEnd {
		return nil, ErrCorruptFile
	}
	h.Dims = make([]uint64, rank)
	elems := uint64(1)
	for i := range h.Dims {
		h.Dims[i] = binary.LittleEndian.Uint64(data[headerSize+8*i:])
		elems *= h.Dims[i]
	}
	elemSize, ok := tensor.DType(h.DType).ElemSize()
	if !ok {
		return nil, ErrCorruptFile
	}
	if h.Size != elems*uint64(elemSize) {
		return nil, ErrCorruptFile
	}
	if uint64(len(data)-dimsEnd) != h.Size {
		return nil, ErrCorruptFile
	}
	return &File{Header: h, data: data, mmapped: mmapped}, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
