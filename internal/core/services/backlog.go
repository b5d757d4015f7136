package services

// DefaultBacklogThreshold is the waiting-task count above which a queue is
// considered backlogged. Tuned for the volume a single worker pool drains
// within one schedule interval.
const DefaultBacklogThreshold int64 = 3000

// Backlogged reports whether a queue's waiting-task count exceeds the
// threshold. The comparison is strictly greater-than: a count equal to the
// threshold is not backlogged.
func Backlogged(waiting, threshold int64) bool {
	return waiting > threshold
}
