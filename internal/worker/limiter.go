package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles batch throughput. Documents are local files, but batch
// runs often feed OCR services or network destinations downstream; a
// documents-per-second ceiling keeps large archive runs polite. A nil
// Limiter never blocks.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing docsPerSecond with the given burst.
// A rate of zero or less returns nil, meaning unthrottled.
func NewLimiter(docsPerSecond float64, burst int) *Limiter {
	if docsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(docsPerSecond), burst),
	}
}

// Wait blocks until the next document may be processed
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a document may be processed without waiting
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}
