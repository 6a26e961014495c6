package simt

import (
	"runtime"
	"sync"
)

// launchInternal implements plain kernel execution. The grid is split across
// CPU workers; each worker processes whole blocks, running the threads of a
// block sequentially to maximize cache reuse.
func (ctx *Context) launchInternal(kernel KernelFunc, grid, block Dim3, stream *Stream) error {
	if err := checkLaunchDims(grid, block); err != nil {
		return err
	}

	gridSize := grid.Size()
	blockSize := block.Size()

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func(startBlock, endBlock int) {
				defer wg.Done()

				for blockID := startBlock; blockID < endBlock; blockID++ {
					blockIdx := linearTo3D(blockID, grid)

					for threadID := 0; threadID < blockSize; threadID++ {
						kernel(ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						})
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// launchCooperative implements cooperative kernel execution. Every thread of
// a block runs as its own goroutine so the group barrier is a real
// rendezvous; each block gets a private shared buffer of sharedLen float64s
// scoped to the block's lifetime. Blocks execute sequentially, one group
// resident at a time.
func (ctx *Context) launchCooperative(kernel CoopKernelFunc, grid, block Dim3, sharedLen int, stream *Stream) error {
	if err := checkLaunchDims(grid, block); err != nil {
		return err
	}
	if sharedLen < 0 {
		return NewInvalidArgError("LaunchCoop", "shared buffer length must be non-negative")
	}

	gridSize := grid.Size()
	blockSize := block.Size()

	stream.Submit(func() {
		for blockID := 0; blockID < gridSize; blockID++ {
			blockIdx := linearTo3D(blockID, grid)
			grp := newGroup(blockSize, sharedLen)

			var wg sync.WaitGroup
			wg.Add(blockSize)
			for threadID := 0; threadID < blockSize; threadID++ {
				tid := ThreadID{
					BlockIdx:  blockIdx,
					ThreadIdx: linearTo3D(threadID, block),
					BlockDim:  block,
					GridDim:   grid,
				}
				go func(tid ThreadID) {
					// A returning thread leaves the barrier so the rest of
					// the group can still rendezvous.
					defer wg.Done()
					defer grp.leave()
					kernel(tid, grp)
				}(tid)
			}
			wg.Wait()
		}
	})

	return nil
}

// checkLaunchDims validates grid and block dimensions. A zero-sized grid is
// rejected so a launch can never silently do nothing.
func checkLaunchDims(grid, block Dim3) error {
	if grid.Size() <= 0 {
		return NewInvalidArgError("Launch", "grid must contain at least one block")
	}
	if block.Size() <= 0 {
		return NewInvalidArgError("Launch", "block must contain at least one thread")
	}
	if block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgError("Launch", "block exceeds MaxThreadsPerBlock")
	}
	return nil
}

// linearTo3D converts a linear index to 3D coordinates.
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}

// ForEach applies fn to each of the first size float64 elements of data,
// launched as a plain kernel on the default stream.
func ForEach(data DevicePtr, size int, fn func(idx int, val *float64)) error {
	grid := Dim3{X: (size + DefaultBlockSize - 1) / DefaultBlockSize, Y: 1, Z: 1}
	block := Dim3{X: DefaultBlockSize, Y: 1, Z: 1}

	return Launch(func(tid ThreadID) {
		idx := tid.Global()
		if idx < size {
			slice := data.Float64()
			fn(idx, &slice[idx])
		}
	}, grid, block)
}
