package offsync

import "time"

// Backoff returns the wait duration before the given attempt.
type Backoff func(attempt int) time.Duration

// Constant waits the same duration before every attempt. This is the
// engine default: retry pacing here exists to ride out transient outages,
// not to shed load.
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration {
		return d
	}
}

// Exponential creates a capped exponential backoff function for hosts
// that want growing delays instead.
func Exponential(base time.Duration, factor float64, max time.Duration) Backoff {
	return func(attempt int) time.Duration {
		if attempt <= 0 {
			return base
		}
		d := float64(base)
		for i := 1; i < attempt; i++ {
			d *= factor
			if time.Duration(d) >= max {
				return max
			}
		}
		delay := time.Duration(d)
		if delay > max {
			return max
		}
		if delay < base {
			return base
		}
		return delay
	}
}
