package controller

// Scheduler arms and disarms a frame callback. The controller re-arms it
// after every tick while animation is still needed and lets it lapse once
// the system is cold and idle, so no CPU burns on a settled graph.
//
// The terminal frontend backs this with its tick command stream; tests use
// a recording fake.
type Scheduler interface {
	// Arm requests one tick callback at the next display refresh. Arming an
	// already armed scheduler is a no-op.
	Arm()
	// Disarm cancels a pending tick request, if any.
	Disarm()
}

// nopScheduler is used until a real scheduler is attached.
type nopScheduler struct{}

func (nopScheduler) Arm()    {}
func (nopScheduler) Disarm() {}
