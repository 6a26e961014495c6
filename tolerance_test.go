package simt

import (
	"math"
	"strings"
	"testing"
)

func TestFloat64NearEqual(t *testing.T) {
	tol := DefaultTolerance()

	cases := []struct {
		name string
		a, b float64
		want bool
	}{
		{"exact", 1.0, 1.0, true},
		{"zero", 0.0, 0.0, true},
		{"signed zero", 0.0, math.Copysign(0, -1), true},
		{"within abs tol", 0.0, 5e-9, true},
		{"within rel tol", 1e6, 1e6 * (1 + 5e-6), true},
		{"beyond rel tol", 1.0, 1.0001, false},
		{"far apart", 1.0, 2.0, false},
		{"both NaN", math.NaN(), math.NaN(), true},
		{"NaN vs value", math.NaN(), 1.0, false},
		{"both +Inf", math.Inf(1), math.Inf(1), true},
		{"opposite Inf", math.Inf(1), math.Inf(-1), false},
		{"Inf vs finite", math.Inf(1), 1.0, false},
		{"finite vs -Inf", 1.0, math.Inf(-1), false},
		{"adjacent floats", 1.0, math.Nextafter(1.0, 2.0), true},
	}

	for _, tc := range cases {
		if got := Float64NearEqual(tc.a, tc.b, tol); got != tc.want {
			t.Errorf("%s: NearEqual(%v, %v) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

// StrictTolerance accepts only near-exact matches the defaults would let by.
func TestStrictTolerance(t *testing.T) {
	strict := StrictTolerance()

	a, b := 1.0, 1.0*(1+1e-7)
	if !Float64NearEqual(a, b, DefaultTolerance()) {
		t.Fatal("1e-7 relative difference should pass the default tolerance")
	}
	if Float64NearEqual(a, b, strict) {
		t.Error("1e-7 relative difference should fail the strict tolerance")
	}

	if !Float64NearEqual(1.0, math.Nextafter(1.0, 2.0), strict) {
		t.Error("adjacent floats should pass the strict tolerance")
	}
	if Float64NearEqual(math.Inf(1), 1.0, strict) {
		t.Error("Inf should not pass the strict tolerance")
	}
}

func TestFloat64ULPDiff(t *testing.T) {
	if d := Float64ULPDiff(1.0, 1.0); d != 0 {
		t.Errorf("identical values: ULP diff %d", d)
	}
	if d := Float64ULPDiff(1.0, math.Nextafter(1.0, 2.0)); d != 1 {
		t.Errorf("adjacent values: ULP diff %d, want 1", d)
	}
	if d := Float64ULPDiff(-1.0, 1.0); d != math.MaxInt {
		t.Errorf("opposite signs: ULP diff %d, want MaxInt", d)
	}
}

func TestVerifyFloat64s(t *testing.T) {
	tol := DefaultTolerance()

	a := []float64{1, 2, 3, 4}
	b := []float64{1, 2, 3, 4}

	res := VerifyFloat64s(a, b, tol)
	if !res.Ok() {
		t.Fatalf("identical vectors should verify: %s", res)
	}
	if !strings.HasPrefix(res.String(), "PASS") {
		t.Errorf("unexpected report: %s", res)
	}

	// Perturb one element beyond tolerance.
	b[2] += 0.01
	res = VerifyFloat64s(a, b, tol)
	if res.Ok() {
		t.Fatal("perturbed vector should not verify")
	}
	if res.NumErrors != 1 {
		t.Errorf("NumErrors = %d, want 1", res.NumErrors)
	}
	if res.FirstError != 2 {
		t.Errorf("FirstError = %d, want 2", res.FirstError)
	}
	if res.MaxAbsError < 0.009 {
		t.Errorf("MaxAbsError = %g", res.MaxAbsError)
	}
	if !strings.HasPrefix(res.String(), "FAIL") {
		t.Errorf("unexpected report: %s", res)
	}
}

func TestVerifyFloat64sLengthMismatch(t *testing.T) {
	res := VerifyFloat64s([]float64{1, 2}, []float64{1}, DefaultTolerance())
	if res.Ok() {
		t.Error("length mismatch should not verify")
	}
}

func TestValidate(t *testing.T) {
	found := []float64{1.0, 2.0, 3.0}
	expected := []float64{1.0, 2.0 + 1e-9, 3.0}

	if !Validate(found, expected) {
		t.Error("vectors within tolerance should validate")
	}

	expected[0] = 1.1
	if Validate(found, expected) {
		t.Error("vectors beyond tolerance should not validate")
	}
}

// An overflowed element must never validate against a finite reference.
func TestValidateRejectsOverflow(t *testing.T) {
	expected := []float64{1.0, 2.0, 3.0}

	if Validate([]float64{1.0, math.Inf(1), 3.0}, expected) {
		t.Error("+Inf element should not validate against a finite reference")
	}
	if Validate([]float64{1.0, math.Inf(-1), 3.0}, expected) {
		t.Error("-Inf element should not validate against a finite reference")
	}

	res := VerifyFloat64s(expected, []float64{1.0, math.Inf(1), 3.0}, DefaultTolerance())
	if res.Ok() {
		t.Fatal("verification should have failed")
	}
	if res.FirstError != 1 {
		t.Errorf("FirstError = %d, want 1", res.FirstError)
	}
}
