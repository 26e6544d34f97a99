package clock

import "time"

// Clock abstracts time so the fixed narration delays in game handlers can be
// controlled from tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System implements Clock using the real time package.
type System struct{}

func New() *System {
	return &System{}
}

func (c *System) Now() time.Time {
	return time.Now()
}

func (c *System) Sleep(d time.Duration) {
	time.Sleep(d)
}
