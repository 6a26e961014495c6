package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/simtlab/simt/internal/logger"
)

var (
	alpha     float64
	beta      float64
	seed      int64
	logLevel  string
	logFormat string
	logDir    string
	listOnly  bool
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "gemv",
		Usage:     "Benchmark dense matrix-vector product kernels (y = alpha*A*x + beta*y)",
		ArgsUsage: "<arraydim> <version>",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:        "alpha",
				Usage:       "scalar multiplier for A*x",
				Value:       0.2,
				Destination: &alpha,
			},
			&cli.FloatFlag{
				Name:        "beta",
				Usage:       "scalar multiplier for y",
				Value:       1.0,
				Destination: &beta,
			},
			&cli.IntFlag{
				Name:        "seed",
				Usage:       "seed for the random operand generator",
				Value:       42,
				Destination: &seed,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (text, json)",
				Value:       "text",
				Destination: &logFormat,
			},
			&cli.StringFlag{
				Name:        "log-dir",
				Usage:       "directory for JSON run records (disabled when empty)",
				Destination: &logDir,
			},
			&cli.BoolFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "list available kernel versions and exit",
				Destination: &listOnly,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConfig(cmd, loadConfig())

			log := newLogger(logLevel, logFormat)
			ctx = logger.WithContext(ctx, log)

			if listOnly {
				printVariants(cmd.Writer)
				return nil
			}

			opts, err := parseArgs(cmd.Args().Slice())
			if err != nil {
				return cli.Exit(fmt.Sprintf("gemv: ERROR: %v\nUsage: gemv <arraydim> <version>", err), 1)
			}
			opts.Alpha = alpha
			opts.Beta = beta
			opts.Seed = seed
			opts.LogDir = logDir
			opts.Stdout = cmd.Writer
			opts.Stderr = cmd.ErrWriter

			if err := runBench(ctx, opts); err != nil {
				return cli.Exit(fmt.Sprintf("gemv: ERROR: %v", err), 1)
			}
			return nil
		},
	}
}

func newLogger(level, format string) logger.Logger {
	lvl := logger.ParseLevel(level)
	if format == "json" {
		return logger.JSON(os.Stderr, lvl)
	}
	return logger.Text(os.Stderr, lvl)
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
