package api

import (
	"github.com/samcharles93/fakequant/pkg/fakequant"
	"github.com/samcharles93/fakequant/pkg/tensor"
)

// QuantParams mirrors fakequant.Params on the wire.
type QuantParams struct {
	Scale      float64 `json:"scale"`
	ZeroPoint  int64   `json:"zero_point"`
	QuantMin   int64   `json:"quant_min"`
	QuantMax   int64   `json:"quant_max"`
	QuantDelay int64   `json:"quant_delay"`
	Iter       int64   `json:"iter"`
}

func (p QuantParams) toParams() fakequant.Params {
	return fakequant.Params{
		Scale:      p.Scale,
		ZeroPoint:  p.ZeroPoint,
		QuantMin:   p.QuantMin,
		QuantMax:   p.QuantMax,
		QuantDelay: p.QuantDelay,
		Iter:       p.Iter,
	}
}

type ForwardRequest struct {
	QuantParams
	X *tensor.Tensor `json:"x"`
}

type ForwardResponse struct {
	ID string         `json:"id"`
	Y  *tensor.Tensor `json:"y"`
}

type BackwardRequest struct {
	QuantParams
	X  *tensor.Tensor `json:"x"`
	DY *tensor.Tensor `json:"dy"`
}

type BackwardResponse struct {
	ID string         `json:"id"`
	DX *tensor.Tensor `json:"dx"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
