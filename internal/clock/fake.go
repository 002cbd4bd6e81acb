package clock

import "time"

// FakeClock reports a fixed instant until a test moves it.
type FakeClock struct {
	current time.Time
}

func NewFakeClock(at time.Time) *FakeClock {
	return &FakeClock{current: at.UTC()}
}

func (f *FakeClock) Now() time.Time { return f.current }

// Advance shifts the reported instant by d, which may be negative.
func (f *FakeClock) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}
