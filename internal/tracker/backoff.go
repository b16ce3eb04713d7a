package tracker

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Backoff computes the cool-down applied after a 429:
// base * 2^attempt plus up to Jitter, never more than Max. A longer
// Retry-After hint from the server wins, even beyond Max.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter time.Duration

	rand func(n int64) int64
}

// Delay returns the cool-down for the given zero-based attempt.
func (b Backoff) Delay(attempt int, retryAfter time.Duration) time.Duration {
	d := b.Max
	if attempt < 32 {
		if exp := b.Base << attempt; exp > 0 && exp < b.Max {
			d = exp
		}
	}

	if b.Jitter > 0 {
		rnd := b.rand
		if rnd == nil {
			rnd = rand.Int64N
		}
		d += time.Duration(rnd(int64(b.Jitter)))
	}

	if d > b.Max {
		d = b.Max
	}
	return max(d, retryAfter)
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
