package resilience

import "time"

// RetryPolicy bounds how often and how patiently a call is repeated.
type RetryPolicy struct {
	Attempts   int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// Delay returns the pause after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	wait := p.Initial
	for i := 1; i < attempt; i++ {
		wait = time.Duration(float64(wait) * p.Multiplier)
		if wait >= p.Max {
			return p.Max
		}
	}
	if wait > p.Max {
		return p.Max
	}
	return wait
}

// BreakerPolicy configures the per-operation circuit breaker.
type BreakerPolicy struct {
	Enabled       bool
	MinRequests   uint32
	FailureRatio  float64
	OpenTimeout   time.Duration
	HalfOpenCalls uint32
}

type Policy struct {
	Retry   RetryPolicy
	Breaker BreakerPolicy
}

// DefaultPolicy suits publishing completion events: a handful of quick
// retries, then the breaker sheds publishes until the bus is back.
func DefaultPolicy() Policy {
	return Policy{
		Retry: RetryPolicy{
			Attempts:   3,
			Initial:    100 * time.Millisecond,
			Max:        1 * time.Second,
			Multiplier: 2,
		},
		Breaker: BreakerPolicy{
			Enabled:       true,
			MinRequests:   5,
			FailureRatio:  0.5,
			OpenTimeout:   30 * time.Second,
			HalfOpenCalls: 1,
		},
	}
}

// PublishPolicy derives a policy from the operator-facing knobs; zero values
// keep the defaults.
func PublishPolicy(attempts int, backoff time.Duration, breakerOpen time.Duration) Policy {
	p := DefaultPolicy()
	if attempts > 0 {
		p.Retry.Attempts = attempts
	}
	if backoff > 0 {
		p.Retry.Initial = backoff
		if p.Retry.Max < backoff {
			p.Retry.Max = backoff
		}
	}
	if breakerOpen > 0 {
		p.Breaker.OpenTimeout = breakerOpen
	}
	return p
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	r, b := p.Retry, p.Breaker

	if r.Attempts <= 0 {
		r.Attempts = def.Retry.Attempts
	}
	if r.Initial <= 0 {
		r.Initial = def.Retry.Initial
	}
	if r.Max < r.Initial {
		r.Max = r.Initial
	}
	if r.Multiplier < 1 {
		r.Multiplier = def.Retry.Multiplier
	}

	if b.MinRequests == 0 {
		b.MinRequests = def.Breaker.MinRequests
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = def.Breaker.FailureRatio
	}
	if b.OpenTimeout <= 0 {
		b.OpenTimeout = def.Breaker.OpenTimeout
	}
	if b.HalfOpenCalls == 0 {
		b.HalfOpenCalls = def.Breaker.HalfOpenCalls
	}

	return Policy{Retry: r, Breaker: b}
}
