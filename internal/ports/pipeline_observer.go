package ports

import "time"

// Sink for post-optimization handler timings.
type PipelineObserver interface {
	ObserveHandler(handler string, duration time.Duration, err error)
}
