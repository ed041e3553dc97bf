package main

import (
	"fmt"
	"path/filepath"

	"github.com/samcharles93/fakequant/pkg/tensor"
	"github.com/samcharles93/fakequant/pkg/tsf"
)

// loadTensor reads a tensor from path, dispatching on the file extension:
// .tsf for snapshot files, anything else is treated as JSON interchange.
func loadTensor(path string) (*tensor.Tensor, error) {
	if filepath.Ext(path) == ".tsf" {
		f, err := tsf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return f.Tensor()
	}
	return tensor.ReadJSONFile(path)
}

// saveTensor writes a tensor to path with the same extension dispatch.
func saveTensor(path string, t *tensor.Tensor) error {
	if filepath.Ext(path) == ".tsf" {
		return tsf.Write(path, t)
	}
	return tensor.WriteJSONFile(path, t)
}
