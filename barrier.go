package simt

import "sync"

// Group is the per-block cooperative state of a cooperative kernel launch:
// a shared float64 scratch buffer and a barrier spanning all threads of the
// block. The buffer never escapes the block; it is reused tile after tile
// under the protection of Sync.
type Group struct {
	shared  []float64
	barrier *barrier
}

func newGroup(parties, sharedLen int) *Group {
	return &Group{
		shared:  make([]float64, sharedLen),
		barrier: newBarrier(parties),
	}
}

// Shared returns the block's shared scratch buffer.
func (g *Group) Shared() []float64 {
	return g.shared
}

// Sync is a full-group rendezvous: no thread proceeds past it until every
// thread still running in the block has arrived. Every thread of a block
// must reach every Sync the others reach, or return before the first one.
func (g *Group) Sync() {
	g.barrier.await()
}

// leave removes a returned thread from the barrier.
func (g *Group) leave() {
	g.barrier.drop()
}

// barrier is a cyclic barrier over a fixed set of parties. Parties may drop
// out permanently between phases; a drop releases the current phase if the
// departing party was the last one outstanding, so an early-exiting thread
// can never deadlock the rest of its group.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	phase   uint64
}

func newBarrier(parties int) *barrier {
	b := &barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// await blocks until all remaining parties have arrived at this phase.
func (b *barrier) await() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.arrived++
	if b.arrived >= b.parties {
		b.advance()
		return
	}

	phase := b.phase
	for b.phase == phase {
		b.cond.Wait()
	}
}

// drop permanently removes one party from the barrier.
func (b *barrier) drop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.parties--
	if b.parties > 0 && b.arrived >= b.parties {
		b.advance()
	}
}

// advance opens the next phase. Caller must hold mu.
func (b *barrier) advance() {
	b.arrived = 0
	b.phase++
	b.cond.Broadcast()
}
