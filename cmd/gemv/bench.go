package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/simtlab/simt"
	"github.com/simtlab/simt/internal/logger"
)

// benchOptions collects everything one benchmark invocation needs.
type benchOptions struct {
	Dim     int
	Variant simt.Variant
	Alpha   float64
	Beta    float64
	Seed    int64
	LogDir  string
	Stdout  io.Writer
	Stderr  io.Writer
}

// parseArgs validates the positional arguments <arraydim> <version>.
func parseArgs(args []string) (benchOptions, error) {
	var opts benchOptions

	if len(args) < 2 {
		return opts, fmt.Errorf("too few arguments")
	}

	dim, err := strconv.Atoi(args[0])
	if err != nil {
		return opts, fmt.Errorf("array dimension must be an integer")
	}
	if dim <= 0 {
		return opts, fmt.Errorf("array dimension must be a positive integer")
	}
	opts.Dim = dim

	v, ok := simt.VariantByTag(args[1])
	if !ok {
		return opts, fmt.Errorf("no such kernel version: %s\n  Available versions: %s",
			args[1], strings.Join(simt.VariantTags(), ", "))
	}
	opts.Variant = v

	return opts, nil
}

// printVariants lists the dispatch table.
func printVariants(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, "Available versions:")
	for _, v := range simt.Variants() {
		fmt.Fprintf(w, "  %-4s %s\n", v.Tag, v.Description)
	}
}

// runBench performs exactly one timed, validated run of the selected
// variant: generate operands, run, print the elapsed time, validate against
// the reference, and optionally append a run record.
func runBench(ctx context.Context, opts benchOptions) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	log := logger.FromContext(ctx)

	dev := simt.GetDevice()
	log.Info("device",
		"name", dev.Name,
		"cores", dev.NumCores,
		"gomaxprocs", runtime.GOMAXPROCS(0),
	)
	log.Info("run",
		"dim", opts.Dim,
		"version", opts.Variant.Tag,
		"alpha", opts.Alpha,
		"beta", opts.Beta,
		"seed", opts.Seed,
	)

	rng := rand.New(rand.NewSource(opts.Seed))
	a := simt.RandomMatrix(opts.Dim, opts.Dim, rng)
	x := simt.RandomVector(opts.Dim, rng)
	y := simt.Ones(opts.Dim)

	region := simt.StartRegion(0)
	found, err := opts.Variant.Func(opts.Alpha, a, x, opts.Beta, y)
	region.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintf(opts.Stdout, "Elapsed time: %g s\n", region.Elapsed().Seconds())

	expected, err := simt.GEMVReference(opts.Alpha, a, x, opts.Beta, y)
	if err != nil {
		return err
	}

	result := simt.VerifyFloat64s(expected, found, simt.DefaultTolerance())
	validated := result.Ok()

	if opts.LogDir != "" {
		if err := logRun(opts, region.Elapsed().Seconds(), validated, dev.Name); err != nil {
			log.Warn("failed to write run record", "error", err)
		}
	}

	if !validated {
		fmt.Fprintln(opts.Stderr, result.String())
		fmt.Fprintf(opts.Stderr, "    found = %v\n", found)
		fmt.Fprintf(opts.Stderr, "    expected = %v\n", expected)
		return simt.NewNumericalError("Validate", "could not validate solution")
	}

	return nil
}

// logRun appends a JSON run record for this invocation.
func logRun(opts benchOptions, elapsedSec float64, validated bool, device string) error {
	runlog, err := simt.NewRunLogger(opts.LogDir)
	if err != nil {
		return err
	}
	return runlog.Log(simt.RunRecord{
		Version:    opts.Variant.Tag,
		Dim:        opts.Dim,
		Alpha:      opts.Alpha,
		Beta:       opts.Beta,
		ElapsedSec: elapsedSec,
		Validated:  validated,
		Device:     device,
	})
}
