package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fakequant/pkg/fakequant"
)

func gradCmd() *cli.Command {
	var (
		input  string
		grad   string
		output string
	)

	return &cli.Command{
		Name:  "grad",
		Usage: "Compute the straight-through gradient for a tensor pair",
		Flags: append(append(quantFlags(), logFlags()...),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "forward input tensor X (.json or .tsf)",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "grad",
				Aliases:     []string{"g"},
				Usage:       "upstream gradient tensor dY (.json or .tsf)",
				Destination: &grad,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output tensor file (.json or .tsf)",
				Destination: &output,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyQuantConfig(cmd, LoadConfig())
			if input == "" || grad == "" {
				return errors.New("grad: --input and --grad are required")
			}
			if output == "" {
				return errors.New("grad: --output is required")
			}
			log := newLogger()

			x, err := loadTensor(input)
			if err != nil {
				return err
			}
			dy, err := loadTensor(grad)
			if err != nil {
				return err
			}
			dx, err := fakequant.Backward(dy, x, quantParams())
			if err != nil {
				return err
			}
			if err := saveTensor(output, dx); err != nil {
				return err
			}
			log.Info("gradient written",
				"output", output,
				"elements", dx.Len(),
				"saturated", saturatedFraction(dx.Data, dy.Float32s()),
			)
			return nil
		},
	}
}
