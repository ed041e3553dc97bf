package main

import (
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fakequant/internal/logger"
	"github.com/samcharles93/fakequant/pkg/fakequant"
)

var (
	scale      float64
	zeroPoint  int64
	quantMin   int64
	quantMax   int64
	quantDelay int64
	iteration  int64
	logLevel   string
	logFormat  string
)

func quantFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:        "scale",
			Aliases:     []string{"s"},
			Usage:       "quantization step size",
			Value:       1.0 / 255,
			Destination: &scale,
		},
		&cli.Int64Flag{
			Name:        "zero-point",
			Aliases:     []string{"zp", "zero_point"},
			Usage:       "integer code mapped to 0.0",
			Value:       0,
			Destination: &zeroPoint,
		},
		&cli.Int64Flag{
			Name:        "quant-min",
			Aliases:     []string{"qmin", "quant_min"},
			Usage:       "minimum quantized code (inclusive)",
			Value:       0,
			Destination: &quantMin,
		},
		&cli.Int64Flag{
			Name:        "quant-max",
			Aliases:     []string{"qmax", "quant_max"},
			Usage:       "maximum quantized code (inclusive)",
			Value:       255,
			Destination: &quantMax,
		},
		&cli.Int64Flag{
			Name:        "quant-delay",
			Aliases:     []string{"delay", "quant_delay"},
			Usage:       "iterations during which quantization is bypassed",
			Destination: &quantDelay,
		},
		&cli.Int64Flag{
			Name:        "iter",
			Usage:       "current global training step",
			Destination: &iteration,
		},
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, text, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
	}
}

func quantParams() fakequant.Params {
	return fakequant.Params{
		Scale:      scale,
		ZeroPoint:  zeroPoint,
		QuantMin:   quantMin,
		QuantMax:   quantMax,
		QuantDelay: quantDelay,
		Iter:       iteration,
	}
}

func newLogger() logger.Logger {
	level := logger.ParseLevel(logLevel)
	switch logFormat {
	case "json":
		return logger.JSON(os.Stderr, level)
	case "text":
		return logger.Text(os.Stderr, level)
	default:
		return logger.Pretty(os.Stderr, level)
	}
}
