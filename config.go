// Package simt configuration constants
package simt

// Thread and block dimensions
const (
	// DefaultBlockSize is the number of threads per block used by the GEMV
	// kernels; it is also the tile width staged into group-shared memory.
	DefaultBlockSize = 128

	// MaxThreadsPerBlock is the largest block a launch will accept.
	MaxThreadsPerBlock = 1024
)

// Memory pool parameters
const (
	// MemoryAlignment for allocations, one cache line
	MemoryAlignment = 64
)

// Numerical constants
const (
	// Machine epsilon for float64
	Float64Epsilon = 2.220446049250313e-16

	// Maximum ULP difference for float64 comparisons
	MaxULPDiff = 4
)
