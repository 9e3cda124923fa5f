package chrono

import "time"

// API abstracts the wall clock so that timestamps on snapshots and
// screenshots can be pinned in tests.
//
// note: fault injection point
type API interface {
	Now() time.Time
}

type StandardImpl struct{}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// FixedImpl always returns the same instant.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

// Advance moves the fixed instant forward by d.
func (f *FixedImpl) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
