// Package backoff computes the advisory wait between feed polls from
// provider rate-limit metadata.
//
// The value is advisory only; the scheduler decides when the next poll
// actually runs.
package backoff

import "time"

const (
	// DefaultWait applies when the provider omits rate-limit headers
	DefaultWait = 10 * time.Minute

	// StaleWait applies when the reported reset is already in the past
	// (clock skew or a stale header); retry quickly and let the next
	// response refresh the budget
	StaleWait = time.Second

	// margin pads every computed wait so we never race the window edge
	margin = 100 * time.Millisecond
)

// Rate is the rate-limit state reported by the provider on one response.
// Present is false when the provider omitted the headers entirely.
type Rate struct {
	ResetEpoch int64 // window reset, epoch seconds
	Remaining  int   // requests left in the window
	Present    bool
}

// Wait returns how long to wait before the next poll.
//
// When rate state is known, the remaining window is spread evenly across
// the remaining request budget. Remaining==0 counts as 1 so a drained
// budget waits out the full window instead of dividing by zero.
func Wait(r Rate, now time.Time) time.Duration {
	if !r.Present {
		return DefaultWait
	}

	remainingTime := time.Unix(r.ResetEpoch, 0).Sub(now)
	if remainingTime < 0 {
		return StaleWait
	}

	remaining := r.Remaining
	if remaining <= 0 {
		remaining = 1
	}
	return remainingTime/time.Duration(remaining) + margin
}
