package tsf

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/samcharles93/fakequant/pkg/tensor"
)

// Write stores t as a snapshot file at path.
func Write(path string, t *tensor.Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTo(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteTo writes t's snapshot encoding to an open file.
func WriteTo(f *os.File, t *tensor.Tensor) error {
	payload, err := encodePayload(t)
	if err != nil {
		return err
	}

	buf := make([]byte, headerSize+8*len(t.Shape))
	copy(buf, Magic)
	binary.LittleEndian.PutUint16(buf[4:], CurrentMajor)
	binary.LittleEndian.PutUint16(buf[6:], CurrentMinor)
	binary.LittleEndian.PutUint32(buf[8:], uint32(t.DType))
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(t.Shape)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(len(payload)))
	for i, d := range t.Shape {
		if d < 0 {
			return ErrCorruptFile
		}
		binary.LittleEndian.PutUint64(buf[headerSize+8*i:], uint64(d))
	}

	if _, err := f.Write(buf); err != nil {
		return err
	}
	_, err = f.Write(payload)
	return err
}

func encodePayload(t *tensor.Tensor) ([]byte, error) {
	if t.DType != tensor.F32 {
		elemSize, ok := t.DType.ElemSize()
		if !ok {
			return nil, ErrCorruptFile
		}
		if len(t.Raw) != t.Len()*elemSize {
			return nil, ErrCorruptFile
		}
		return t.Raw, nil
	}
	if len(t.Data) != t.Len() {
		return nil, ErrCorruptFile
	}
	payload := make([]byte, 4*len(t.Data))
	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(v))
	}
	return payload, nil
}
