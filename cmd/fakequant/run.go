package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fakequant/pkg/fakequant"
	"github.com/samcharles93/fakequant/pkg/tensor"
)

func runCmd() *cli.Command {
	var (
		input string
		steps int64
		size  int64
		seed  int64
	)

	return &cli.Command{
		Name:  "run",
		Usage: "Simulate fake quantization across training steps",
		Flags: append(append(quantFlags(), logFlags()...),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input tensor file (.json or .tsf); omit for random data",
				Destination: &input,
			},
			&cli.Int64Flag{
				Name:        "steps",
				Aliases:     []string{"n"},
				Usage:       "number of training steps to simulate",
				Value:       10,
				Destination: &steps,
			},
			&cli.Int64Flag{
				Name:        "size",
				Usage:       "element count of the generated random tensor",
				Value:       1024,
				Destination: &size,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "seed for the generated random tensor",
				Value:       1,
				Destination: &seed,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyRunConfig(cmd, LoadConfig(), &steps, &seed)
			log := newLogger()

			var x *tensor.Tensor
			if input != "" {
				var err error
				x, err = loadTensor(input)
				if err != nil {
					return err
				}
			} else {
				x = tensor.New(int(size))
				x.FillRand(seed)
			}
			if steps < 0 {
				return fmt.Errorf("steps must be non-negative, got %d", steps)
			}

			dy := x.ZerosLike()
			for i := range dy.Data {
				dy.Data[i] = 1
			}

			p := quantParams()
			log.Info("simulating",
				"elements", x.Len(),
				"scale", p.Scale,
				"zero_point", p.ZeroPoint,
				"range", fmt.Sprintf("[%d, %d]", p.QuantMin, p.QuantMax),
				"quant_delay", p.QuantDelay,
			)

			for iter := int64(0); iter <= steps; iter++ {
				p.Iter = iter
				y, err := fakequant.Forward(x, p)
				if err != nil {
					return err
				}
				dx, err := fakequant.Backward(dy, x, p)
				if err != nil {
					return err
				}

				active := !(p.QuantDelay > 0 && iter <= p.QuantDelay)
				log.Info("step",
					"iter", iter,
					"active", active,
					"max_err", tensor.MaxAbsDiff(y.Data, x.Data),
					"mean_err", meanAbsErr(y.Data, x.Data),
					"saturated", saturatedFraction(dx.Data, dy.Data),
					"pass_through", passThroughFraction(dx.Data, dy.Data),
				)
			}
			return nil
		},
	}
}

func meanAbsErr(a, b []float32) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(a))
}

// saturatedFraction reports the share of elements whose gradient was zeroed
// by the straight-through mask.
func saturatedFraction(dx, dy []float32) float64 {
	if len(dx) == 0 {
		return 0
	}
	var blocked int
	for i := range dx {
		if dx[i] == 0 && dy[i] != 0 {
			blocked++
		}
	}
	return float64(blocked) / float64(len(dx))
}

// passThroughFraction reports the share of elements whose gradient survived
// the straight-through mask. Elements with a zero upstream gradient are
// counted as passed, so the two fractions sum to one.
func passThroughFraction(dx, dy []float32) float64 {
	if len(dx) == 0 {
		return 0
	}
	return 1 - saturatedFraction(dx, dy)
}
