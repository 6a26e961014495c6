// Package simt reference implementations for verification
package simt

// Reference contains simple, correct implementations used as ground truth
// when verifying the optimized kernels.
type Reference struct{}

// GEMV computes alpha*A*x + beta*y for a column-major A and returns the
// result as a new vector. Single-threaded, column-by-column accumulation.
func (r Reference) GEMV(alpha float64, a Matrix, x []float64, beta float64, y []float64) ([]float64, error) {
	if err := checkGEMVShape("Reference.GEMV", a, x, y); err != nil {
		return nil, err
	}

	out := make([]float64, a.Rows)
	for i := range out {
		out[i] = beta * y[i]
	}

	// Walk columns so A is traversed in storage order.
	for j := 0; j < a.Cols; j++ {
		col := a.Data[j*a.Stride:]
		axj := alpha * x[j]
		for i := 0; i < a.Rows; i++ {
			out[i] += axj * col[i]
		}
	}

	return out, nil
}

// DOT computes the dot product of x and y.
func (r Reference) DOT(x, y []float64) float64 {
	var sum float64
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}
