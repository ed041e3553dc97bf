package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fakequant/pkg/tensor"
	"github.com/samcharles93/fakequant/pkg/tsf"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a tensor snapshot file's header",
		ArgsUsage: "<file.tsf>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("inspect: expected exactly one snapshot file")
			}
			path := cmd.Args().First()

			f, err := tsf.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			h := f.Header
			fmt.Printf("file:    %s\n", path)
			fmt.Printf("version: %d.%d\n", h.Major, h.Minor)
			fmt.Printf("dtype:   %s\n", tensor.DType(h.DType))
			fmt.Printf("shape:   %v\n", h.Dims)
			fmt.Printf("payload: %d bytes\n", h.Size)
			return nil
		},
	}
}
