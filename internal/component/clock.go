package component

import "time"

// FrameClock lives on the store singleton and counts simulated frames.
type FrameClock struct {
	Frame   uint64
	Elapsed time.Duration
}
