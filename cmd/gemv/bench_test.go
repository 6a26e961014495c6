package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/simtlab/simt"
	"github.com/simtlab/simt/internal/logger"
)

func init() {
	simt.TimingWriter = io.Discard
}

func TestParseArgs(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"valid", []string{"256", "v4"}, ""},
		{"no args", nil, "too few arguments"},
		{"one arg", []string{"256"}, "too few arguments"},
		{"non-numeric dim", []string{"abc", "v1"}, "must be an integer"},
		{"zero dim", []string{"0", "v1"}, "positive integer"},
		{"negative dim", []string{"-4", "v1"}, "positive integer"},
		{"unknown version", []string{"256", "v9"}, "no such kernel version"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts, err := parseArgs(tc.args)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if opts.Dim != 256 || opts.Variant.Tag != "v4" {
					t.Errorf("unexpected options: %+v", opts)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseArgsListsVersionsOnUnknownTag(t *testing.T) {
	_, err := parseArgs([]string{"16", "nope"})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, tag := range simt.VariantTags() {
		if !strings.Contains(err.Error(), tag) {
			t.Errorf("error message does not list %s: %q", tag, err)
		}
	}
}

func TestPrintVariants(t *testing.T) {
	var buf bytes.Buffer
	printVariants(&buf)

	out := buf.String()
	for _, tag := range simt.VariantTags() {
		if !strings.Contains(out, tag) {
			t.Errorf("listing does not mention %s:\n%s", tag, out)
		}
	}
}

func TestRunBenchEndToEnd(t *testing.T) {
	ctx := logger.WithContext(context.Background(), logger.Text(io.Discard, 0))

	for _, tag := range simt.VariantTags() {
		t.Run(tag, func(t *testing.T) {
			v, ok := simt.VariantByTag(tag)
			if !ok {
				t.Fatalf("variant %s missing", tag)
			}

			var stdout, stderr bytes.Buffer
			err := runBench(ctx, benchOptions{
				Dim:     256,
				Variant: v,
				Alpha:   0.2,
				Beta:    1.0,
				Seed:    42,
				Stdout:  &stdout,
				Stderr:  &stderr,
			})
			if err != nil {
				t.Fatalf("runBench failed: %v\nstderr: %s", err, stderr.String())
			}
			if !strings.Contains(stdout.String(), "Elapsed time:") {
				t.Errorf("stdout missing elapsed time line:\n%s", stdout.String())
			}
		})
	}
}

// A variant producing out-of-tolerance output must fail the run with the
// FAIL report and both vectors on stderr.
func TestRunBenchRejectsInvalidOutput(t *testing.T) {
	ctx := logger.WithContext(context.Background(), logger.Text(io.Discard, 0))

	broken := simt.Variant{
		Tag:         "v1",
		Description: "corrupted output",
		Func: func(alpha float64, a simt.Matrix, x []float64, beta float64, y []float64) ([]float64, error) {
			out, err := simt.GEMVReference(alpha, a, x, beta, y)
			if err != nil {
				return nil, err
			}
			out[3] += 1.0
			return out, nil
		},
	}

	var stdout, stderr bytes.Buffer
	err := runBench(ctx, benchOptions{
		Dim:     64,
		Variant: broken,
		Alpha:   0.2,
		Beta:    1.0,
		Seed:    42,
		Stdout:  &stdout,
		Stderr:  &stderr,
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), "could not validate solution") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr.String(), "FAIL") {
		t.Errorf("stderr missing FAIL report:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "found =") || !strings.Contains(stderr.String(), "expected =") {
		t.Errorf("stderr missing found/expected vectors:\n%s", stderr.String())
	}
}

func TestRunBenchWritesRunRecord(t *testing.T) {
	ctx := logger.WithContext(context.Background(), logger.Text(io.Discard, 0))
	dir := t.TempDir()

	v, _ := simt.VariantByTag("v1")
	err := runBench(ctx, benchOptions{
		Dim:     64,
		Variant: v,
		Alpha:   0.2,
		Beta:    1.0,
		Seed:    1,
		LogDir:  dir,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	})
	if err != nil {
		t.Fatalf("runBench failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d session files, want 1", len(entries))
	}
	if !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Errorf("unexpected session file name %q", entries[0].Name())
	}
}
