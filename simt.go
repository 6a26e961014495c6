// Package simt emulates a CUDA-style device runtime on the CPU.
// Kernels are launched over a grid of thread blocks; plain launches run a
// block's threads sequentially, while cooperative launches give each block a
// shared scratch buffer and a barrier so tiled kernels can stage data and
// synchronize between load and compute phases.
//
// Example usage:
//
//	d_x, _ := simt.Malloc(n * 8) // n float64s
//	defer simt.Free(d_x)
//	simt.Memcpy(d_x, h_x, n*8, simt.MemcpyHostToDevice)
//
//	grid := simt.Dim3{X: (n + 127) / 128}
//	block := simt.Dim3{X: 128}
//	simt.Launch(kernel, grid, block)
//	simt.Synchronize()
package simt

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device represents a compute device. Here it is always the host CPU with
// its cores and detected SIMD capabilities.
type Device struct {
	ID       int    // Unique device identifier
	Name     string // Human-readable device name
	TotalMem uint64 // Total available memory in bytes
	NumCores int    // Number of CPU cores
}

// Context manages device resources, memory allocation, and stream execution.
type Context struct {
	device        *Device
	streams       map[int]*Stream
	streamID      int32
	memory        *MemoryPool
	defaultStream *Stream
}

// Stream is an ordered sequence of operations that execute asynchronously.
// Operations within a stream execute in order; operations in different
// streams may execute concurrently.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
	wg    sync.WaitGroup
}

// Dim3 represents 3D dimensions for grid and block configurations.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a thread's position within the execution hierarchy,
// with the same indexing semantics as CUDA's blockIdx, threadIdx, blockDim
// and gridDim built-ins.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// KernelFunc is a function launched once per thread of the grid.
type KernelFunc func(tid ThreadID)

// CoopKernelFunc is a kernel whose threads cooperate through group-shared
// memory. All threads of a block run concurrently and may synchronize on
// the group barrier.
type CoopKernelFunc func(tid ThreadID, grp *Group)

// DevicePtr is a pointer into device memory. Use the typed view methods
// (Float64, Byte) to access the underlying data, and Offset for pointer
// arithmetic.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// Global runtime state
var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func init() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:       0,
			Name:     deviceName(),
			TotalMem: getSystemMemory(),
			NumCores: runtime.NumCPU(),
		}

		defaultContext = &Context{
			device:  defaultDevice,
			streams: make(map[int]*Stream),
			memory:  NewMemoryPool(),
		}

		defaultContext.defaultStream = defaultContext.CreateStream()
	})
}

// Malloc allocates device memory of the specified size in bytes,
// aligned for SIMD access.
func Malloc(size int) (DevicePtr, error) {
	return defaultContext.Malloc(size)
}

// Free releases device memory allocated by Malloc.
func Free(ptr DevicePtr) error {
	return defaultContext.Free(ptr)
}

// Memcpy copies memory between host and device. dst and src may be
// DevicePtrs or Go slices; size is in bytes.
func Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	return defaultContext.Memcpy(dst, src, size, kind)
}

// Launch executes a kernel on the default stream across a grid of blocks.
// Threads within a block run sequentially; kernels that need intra-block
// synchronization must use LaunchCoop.
func Launch(kernel KernelFunc, grid, block Dim3) error {
	return defaultContext.Launch(kernel, grid, block)
}

// LaunchCoop executes a cooperative kernel on the default stream. Every
// thread of a block runs as its own goroutine with access to a shared
// scratch buffer of sharedLen float64s and the group barrier.
func LaunchCoop(kernel CoopKernelFunc, grid, block Dim3, sharedLen int) error {
	return defaultContext.LaunchCoop(kernel, grid, block, sharedLen)
}

// Synchronize waits for all operations on all streams to complete.
func Synchronize() error {
	return defaultContext.Synchronize()
}

// GetDevice returns the current device information.
func GetDevice() *Device {
	return defaultDevice
}

// SetDevice sets the active device. Only device 0 exists.
func SetDevice(id int) error {
	if id != 0 {
		return ErrInvalidDevice
	}
	return nil
}

// GetDeviceCount returns the number of available devices, always 1.
func GetDeviceCount() int {
	return 1
}

// GetDeviceProperties returns device properties for the given device ID.
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, NewInvalidArgError("GetDeviceProperties", fmt.Sprintf("invalid device ID: %d", id))
	}
	return defaultDevice, nil
}

// Context methods

// CreateStream creates a new execution stream.
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1000),
		done:  make(chan struct{}),
	}

	go stream.worker()

	ctx.streams[id] = stream
	return stream
}

// Launch executes a kernel on the default stream.
func (ctx *Context) Launch(kernel KernelFunc, grid, block Dim3) error {
	return ctx.LaunchStream(kernel, grid, block, ctx.defaultStream)
}

// LaunchStream executes a kernel on a specific stream.
func (ctx *Context) LaunchStream(kernel KernelFunc, grid, block Dim3, stream *Stream) error {
	return ctx.launchInternal(kernel, grid, block, stream)
}

// LaunchCoop executes a cooperative kernel on the default stream.
func (ctx *Context) LaunchCoop(kernel CoopKernelFunc, grid, block Dim3, sharedLen int) error {
	return ctx.LaunchCoopStream(kernel, grid, block, sharedLen, ctx.defaultStream)
}

// LaunchCoopStream executes a cooperative kernel on a specific stream.
func (ctx *Context) LaunchCoopStream(kernel CoopKernelFunc, grid, block Dim3, sharedLen int, stream *Stream) error {
	return ctx.launchCooperative(kernel, grid, block, sharedLen, stream)
}

// Synchronize waits for all streams to complete.
func (ctx *Context) Synchronize() error {
	for _, stream := range ctx.streams {
		stream.Synchronize()
	}
	return nil
}

// Stream methods

// worker processes tasks for a stream in submission order.
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
	close(s.done)
}

// Synchronize waits for all tasks in the stream to complete.
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Submit adds a task to the stream.
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Helper functions

// Global returns the global linear thread index along X.
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// Size returns the total number of elements spanned by the dimensions.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// deviceName describes the CPU device including detected SIMD features.
func deviceName() string {
	if f := simdFeatures(); f != "" {
		return "CPU (" + f + ")"
	}
	return "CPU"
}
