package render

import "time"

// Stats reports progress and timing for a render run, as returned by
// Progressive.Run.
type Stats struct {
	Iteration     int
	TotalElapsed  time.Duration
	LastIteration time.Duration
}
