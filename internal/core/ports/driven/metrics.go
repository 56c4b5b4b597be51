package driven

import "time"

// Metrics records pipeline outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveIngest records one ingest attempt.
	ObserveIngest(chunks int, elapsed time.Duration, err error)

	// ObserveAsk records one ask attempt.
	ObserveAsk(sources int, elapsed time.Duration, err error)
}
