package simt

import "time"

// Region measures elapsed wall-clock time for a scoped section of work.
// Regions are single-use; the offset lets sequential regions chain into a
// running total:
//
//	r := simt.StartRegion(0)
//	// ... first transfer ...
//	r.Stop()
//	r = simt.StartRegion(r.Elapsed())
//	// ... second transfer ...
//	r.Stop()
//	total := r.Elapsed()
type Region struct {
	offset time.Duration
	start  time.Time
	end    time.Time
}

// StartRegion opens a timed region carrying a prior accumulated offset.
func StartRegion(offset time.Duration) *Region {
	return &Region{offset: offset, start: time.Now()}
}

// Stop closes the region.
func (r *Region) Stop() {
	r.end = time.Now()
}

// Elapsed returns the offset plus the time between Start and Stop.
func (r *Region) Elapsed() time.Duration {
	return r.offset + r.end.Sub(r.start)
}

// Event marks a point in a stream's execution order. The timestamp is taken
// when the stream worker reaches the event, not when it is recorded, so two
// events bracket exactly the stream work submitted between them.
type Event struct {
	done chan struct{}
	at   time.Time
}

// RecordEvent enqueues a timing event on the stream.
func (ctx *Context) RecordEvent(stream *Stream) *Event {
	e := &Event{done: make(chan struct{})}
	stream.Submit(func() {
		e.at = time.Now()
		close(e.done)
	})
	return e
}

// Synchronize blocks until the stream has reached the event.
func (e *Event) Synchronize() {
	<-e.done
}

// EventElapsed returns the stream time between two events, waiting for both.
func EventElapsed(start, end *Event) time.Duration {
	start.Synchronize()
	end.Synchronize()
	return end.at.Sub(start.at)
}

// DeviceRegion measures elapsed device (stream) time between two events,
// with the same offset chaining as Region.
type DeviceRegion struct {
	offset time.Duration
	ctx    *Context
	stream *Stream
	start  *Event
	end    *Event
}

// StartDeviceRegion opens a device-timed region on the default stream.
func StartDeviceRegion(offset time.Duration) *DeviceRegion {
	ctx := defaultContext
	return &DeviceRegion{
		offset: offset,
		ctx:    ctx,
		stream: ctx.defaultStream,
		start:  ctx.RecordEvent(ctx.defaultStream),
	}
}

// Stop records the closing event and waits for the stream to reach it.
func (r *DeviceRegion) Stop() {
	r.end = r.ctx.RecordEvent(r.stream)
	r.end.Synchronize()
}

// Elapsed returns the offset plus the stream time between the two events.
func (r *DeviceRegion) Elapsed() time.Duration {
	return r.offset + EventElapsed(r.start, r.end)
}
