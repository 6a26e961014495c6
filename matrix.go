package simt

import "math/rand"

// Matrix is a dense column-major (Fortran-order) float64 matrix. Element
// (i, j) lives at Data[i+j*Stride]; Stride is the leading dimension and must
// be at least Rows.
type Matrix struct {
	Rows, Cols int
	Stride     int
	Data       []float64
}

// NewMatrix allocates a zeroed Rows×Cols column-major matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{
		Rows:   rows,
		Cols:   cols,
		Stride: rows,
		Data:   make([]float64, rows*cols),
	}
}

// At returns element (i, j).
func (m Matrix) At(i, j int) float64 {
	return m.Data[i+j*m.Stride]
}

// Set assigns element (i, j).
func (m Matrix) Set(i, j int, v float64) {
	m.Data[i+j*m.Stride] = v
}

// IsSquare reports whether the matrix is square.
func (m Matrix) IsSquare() bool {
	return m.Rows == m.Cols
}

// checkShape validates the matrix invariants and operand lengths for GEMV.
func checkGEMVShape(op string, a Matrix, x, y []float64) error {
	if a.Rows <= 0 || a.Cols <= 0 {
		return NewInvalidArgError(op, "matrix dimensions must be positive")
	}
	if a.Stride < a.Rows {
		return NewInvalidArgError(op, "matrix stride smaller than row count")
	}
	if len(a.Data) < a.Stride*a.Cols {
		return NewInvalidArgError(op, "matrix data shorter than stride*cols")
	}
	if len(x) != a.Cols {
		return NewInvalidArgError(op, "x length does not match matrix columns")
	}
	if len(y) != a.Rows {
		return NewInvalidArgError(op, "y length does not match matrix rows")
	}
	return nil
}

// RandomMatrix fills a Rows×Cols matrix with uniform values in [0, 1).
func RandomMatrix(rows, cols int, rng *rand.Rand) Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.Data {
		m.Data[i] = rng.Float64()
	}
	return m
}

// RandomVector returns a length-n vector of uniform values in [0, 1).
func RandomVector(n int, rng *rand.Rand) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.Float64()
	}
	return v
}

// Ones returns a length-n vector of ones.
func Ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
