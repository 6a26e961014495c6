package simt

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

// GEMVFunc computes alpha*A*x + beta*y for a column-major A and returns the
// result as a new vector. y is read, never mutated.
type GEMVFunc func(alpha float64, a Matrix, x []float64, beta float64, y []float64) ([]float64, error)

// Variant is one GEMV implementation selectable by tag.
type Variant struct {
	Tag         string
	Description string
	Func        GEMVFunc
}

// variants is the static dispatch table mapping version tags to
// implementations, in presentation order.
var variants = []Variant{
	{"v1", "parallel CPU loop, one goroutine chunk per row range", GEMVParallel},
	{"v2", "single-threaded reference computation", GEMVReference},
	{"v3", "device kernel, one thread per row", GEMVDevice},
	{"v4", "device kernel, x staged in shared-memory tiles", GEMVDeviceShared},
}

// Variants returns all registered GEMV variants.
func Variants() []Variant {
	out := make([]Variant, len(variants))
	copy(out, variants)
	return out
}

// VariantByTag looks up a variant in the dispatch table.
func VariantByTag(tag string) (Variant, bool) {
	for _, v := range variants {
		if v.Tag == tag {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantTags returns the registered tags in presentation order.
func VariantTags() []string {
	tags := make([]string, len(variants))
	for i, v := range variants {
		tags[i] = v.Tag
	}
	return tags
}

// TimingWriter receives the cosmetic per-stage timing lines printed by the
// device variants.
var TimingWriter io.Writer = os.Stderr

// GEMVParallel is the data-parallel CPU variant: rows are chunked across
// CPU workers, each row reduced independently.
func GEMVParallel(alpha float64, a Matrix, x []float64, beta float64, y []float64) ([]float64, error) {
	if err := checkGEMVShape("GEMVParallel", a, x, y); err != nil {
		return nil, err
	}

	out := make([]float64, a.Rows)

	numWorkers := runtime.NumCPU()
	if a.Rows < numWorkers {
		numWorkers = a.Rows
	}
	rowsPerWorker := (a.Rows + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for workerID := 0; workerID < numWorkers; workerID++ {
		start := workerID * rowsPerWorker
		end := start + rowsPerWorker
		if end > a.Rows {
			end = a.Rows
		}

		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				var prod float64
				for j := 0; j < a.Cols; j++ {
					prod += a.Data[i+j*a.Stride] * x[j]
				}
				out[i] = alpha*prod + beta*y[i]
			}
		}(start, end)
	}
	wg.Wait()

	return out, nil
}

// GEMVReference is the single-threaded ground-truth variant.
func GEMVReference(alpha float64, a Matrix, x []float64, beta float64, y []float64) ([]float64, error) {
	return Reference{}.GEMV(alpha, a, x, beta, y)
}

// GEMVDevice runs the naive one-thread-per-row device kernel and prints the
// transfer and kernel timings.
func GEMVDevice(alpha float64, a Matrix, x []float64, beta float64, y []float64) ([]float64, error) {
	out, t, err := gemvOnDevice(alpha, a, x, beta, y, false)
	if err != nil {
		return nil, err
	}
	t.print(TimingWriter)
	return out, nil
}

// GEMVDeviceShared runs the shared-memory tiled device kernel and prints the
// transfer and kernel timings.
func GEMVDeviceShared(alpha float64, a Matrix, x []float64, beta float64, y []float64) ([]float64, error) {
	out, t, err := gemvOnDevice(alpha, a, x, beta, y, true)
	if err != nil {
		return nil, err
	}
	t.print(TimingWriter)
	return out, nil
}

// deviceTimings carries the per-stage device timings of one harness run.
type deviceTimings struct {
	Transfer time.Duration // host-to-device plus device-to-host, chained
	Kernel   time.Duration
}

func (t deviceTimings) print(w io.Writer) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "  Device transfer time: %g s\n", t.Transfer.Seconds())
	fmt.Fprintf(w, "  Device kernel time: %g s\n", t.Kernel.Seconds())
}

// gemvOnDevice is the harness: it moves the operands into device buffers,
// launches the selected kernel over ceil(rows/DefaultBlockSize) blocks of
// DefaultBlockSize threads, and copies the output back. Transfers are
// submitted asynchronously and timed as one chained region; the kernel is
// timed as its own region.
func gemvOnDevice(alpha float64, a Matrix, x []float64, beta float64, y []float64, tiled bool) ([]float64, deviceTimings, error) {
	if err := checkGEMVShape("GEMV", a, x, y); err != nil {
		return nil, deviceTimings{}, err
	}

	n, m := a.Rows, a.Cols

	dA, err := Malloc(len(a.Data) * 8)
	if err != nil {
		return nil, deviceTimings{}, err
	}
	defer Free(dA)
	dX, err := Malloc(m * 8)
	if err != nil {
		return nil, deviceTimings{}, err
	}
	defer Free(dX)
	dY, err := Malloc(n * 8)
	if err != nil {
		return nil, deviceTimings{}, err
	}
	defer Free(dY)
	dOut, err := Malloc(n * 8)
	if err != nil {
		return nil, deviceTimings{}, err
	}
	defer Free(dOut)

	xfer := StartDeviceRegion(0)
	if err := MemcpyAsync(dA, a.Data, len(a.Data)*8, MemcpyHostToDevice); err != nil {
		return nil, deviceTimings{}, err
	}
	if err := MemcpyAsync(dX, x, m*8, MemcpyHostToDevice); err != nil {
		return nil, deviceTimings{}, err
	}
	if err := MemcpyAsync(dY, y, n*8, MemcpyHostToDevice); err != nil {
		return nil, deviceTimings{}, err
	}
	xfer.Stop()

	grid := Dim3{X: (n + DefaultBlockSize - 1) / DefaultBlockSize, Y: 1, Z: 1}
	block := Dim3{X: DefaultBlockSize, Y: 1, Z: 1}

	kern := StartDeviceRegion(0)
	if tiled {
		err = LaunchCoop(gemvSharedKernel(alpha, beta, n, m, a.Stride, dA.Float64(), dX.Float64(), dY.Float64(), dOut.Float64()),
			grid, block, DefaultBlockSize)
	} else {
		err = Launch(gemvKernel(alpha, beta, n, m, a.Stride, dA.Float64(), dX.Float64(), dY.Float64(), dOut.Float64()),
			grid, block)
	}
	if err != nil {
		return nil, deviceTimings{}, NewExecutionError("GEMV", "kernel launch failed", err)
	}
	kern.Stop()

	out := make([]float64, n)
	back := StartDeviceRegion(xfer.Elapsed())
	if err := MemcpyAsync(out, dOut, n*8, MemcpyDeviceToHost); err != nil {
		return nil, deviceTimings{}, err
	}
	back.Stop()

	return out, deviceTimings{Transfer: back.Elapsed(), Kernel: kern.Elapsed()}, nil
}

// gemvKernel is the naive device kernel: each thread owns one output row
// and reduces the full row against x.
func gemvKernel(alpha, beta float64, n, m, lda int, a, x, y, out []float64) KernelFunc {
	return func(tid ThreadID) {
		i := tid.Global()
		if i >= n {
			return
		}

		var prod float64
		for j := 0; j < m; j++ {
			prod += a[i+j*lda] * x[j]
		}

		out[i] = alpha*prod + beta*y[i]
	}
}

// gemvSharedKernel is the tiled device kernel. The reduction dimension is
// walked in DefaultBlockSize tiles; each tile of x is cooperatively staged
// into the block's shared buffer so all rows in the group reuse it.
//
// Every thread in a group reaches every barrier, or none past this point:
// threads whose row index is out of range never return early. They keep
// loading tile elements and syncing, and only skip the accumulate and
// writeback steps. A partial final tile is handled by clamping both the
// cooperative load and the inner reduction to the matrix edge.
func gemvSharedKernel(alpha, beta float64, n, m, lda int, a, x, y, out []float64) CoopKernelFunc {
	return func(tid ThreadID, grp *Group) {
		i := tid.Global()
		t := tid.ThreadIdx.X
		bsize := tid.BlockDim.X
		lx := grp.Shared()

		var prod float64
		for base := 0; base < m; base += bsize {
			tile := bsize
			if m-base < tile {
				tile = m - base // remainder tail
			}

			if t < tile {
				lx[t] = x[base+t]
			}
			grp.Sync() // all loads complete before any read

			if i < n {
				row := a[i:]
				for j := 0; j < tile; j++ {
					prod += row[(base+j)*lda] * lx[j]
				}
			}
			grp.Sync() // all reads complete before the next tile's loads
		}

		if i < n {
			out[i] = alpha*prod + beta*y[i]
		}
	}
}
