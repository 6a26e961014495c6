package simt

import (
	"testing"
	"time"
)

func TestRegionElapsed(t *testing.T) {
	r := StartRegion(0)
	time.Sleep(10 * time.Millisecond)
	r.Stop()

	if got := r.Elapsed(); got < 10*time.Millisecond {
		t.Errorf("elapsed %v, want at least 10ms", got)
	}
}

// Sequential regions chain through the offset into a running total.
func TestRegionOffsetChaining(t *testing.T) {
	r := StartRegion(0)
	time.Sleep(5 * time.Millisecond)
	r.Stop()
	first := r.Elapsed()

	r = StartRegion(first)
	time.Sleep(5 * time.Millisecond)
	r.Stop()

	if got := r.Elapsed(); got < first+5*time.Millisecond {
		t.Errorf("chained elapsed %v, want at least %v", got, first+5*time.Millisecond)
	}
}

// Events bracket exactly the stream work submitted between them.
func TestDeviceRegionBracketsStreamWork(t *testing.T) {
	const pause = 20 * time.Millisecond

	ctx := defaultContext
	r := StartDeviceRegion(0)
	ctx.defaultStream.Submit(func() { time.Sleep(pause) })
	r.Stop()

	if got := r.Elapsed(); got < pause {
		t.Errorf("device region measured %v, want at least %v", got, pause)
	}

	// An empty region after synchronization measures almost nothing.
	r2 := StartDeviceRegion(0)
	r2.Stop()
	if got := r2.Elapsed(); got > pause {
		t.Errorf("empty device region measured %v", got)
	}
}

func TestEventElapsedWaitsForBoth(t *testing.T) {
	ctx := defaultContext
	stream := ctx.defaultStream

	start := ctx.RecordEvent(stream)
	stream.Submit(func() { time.Sleep(5 * time.Millisecond) })
	end := ctx.RecordEvent(stream)

	if d := EventElapsed(start, end); d < 5*time.Millisecond {
		t.Errorf("event distance %v, want at least 5ms", d)
	}
}
