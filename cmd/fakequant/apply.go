package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fakequant/pkg/fakequant"
	"github.com/samcharles93/fakequant/pkg/tensor"
)

func applyCmd() *cli.Command {
	var (
		input  string
		output string
	)

	return &cli.Command{
		Name:  "apply",
		Usage: "Fake-quantize a tensor file once",
		Flags: append(append(quantFlags(), logFlags()...),
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input tensor file (.json or .tsf)",
				Destination: &input,
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
			if input == "" {
				return errors.New("apply: --input is required")
			}
			if output == "" {
				return errors.New("apply: --output is required")
			}
			log := newLogger()

			x, err := loadTensor(input)
			if err != nil {
				return err
			}
			y, err := fakequant.Forward(x, quantParams())
			if err != nil {
				return err
			}
			if err := saveTensor(output, y); err != nil {
				return err
			}
			log.Info("applied",
				"input", input,
				"output", output,
				"elements", x.Len(),
				"max_err", tensor.MaxAbsDiff(y.Data, x.Data),
			)
			return nil
		},
	}
}
