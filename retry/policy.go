// retry/policy.go
package retry

import (
	"errors"
	"fmt"
	"time"
)

// Policy decides whether a failed sink write is tried again.
type Policy interface {
	// NextRetry returns the wait before retry number attempt (0-based) and
	// false once the policy gives up.
	NextRetry(attempt int) (time.Duration, bool)
}

// Strategy names accepted by New and the retry.strategy setting.
const (
	StrategyExponential = "exponential"
	StrategyFixed       = "fixed"
	StrategyComposite   = "composite"
)

var ErrUnknownStrategy = errors.New("unknown retry strategy")

const maxDuration = time.Duration(1<<63 - 1)

// New builds the policy named by strategy. The composite strategy retries
// once immediately and then backs off exponentially from initial.
func New(strategy string, initial, maxDelay time.Duration, attempts int) (Policy, error) {
	switch strategy {
	case StrategyExponential, "":
		return &ExponentialBackoff{InitialDelay: initial, MaxDelay: maxDelay, MaxAttempts: attempts}, nil
	case StrategyFixed:
		return &FixedInterval{Interval: initial, MaxAttempts: attempts}, nil
	case StrategyComposite:
		return &CompositePolicy{Policies: []Policy{
			&FixedInterval{MaxAttempts: min(attempts, 1)},
			&ExponentialBackoff{InitialDelay: initial, MaxDelay: maxDelay, MaxAttempts: attempts},
		}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// ExponentialBackoff doubles the wait after every attempt, capped at MaxDelay
// when MaxDelay is set.
type ExponentialBackoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
}

func (p *ExponentialBackoff) NextRetry(attempt int) (time.Duration, bool) {
	if attempt < 0 || attempt >= p.MaxAttempts {
		return 0, false
	}

	delay := p.InitialDelay
	for i := 0; i < attempt; i++ {
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			break
		}
		if delay > maxDuration/2 {
			return maxDuration, true
		}
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay, true
}

// FixedInterval waits the same Interval before each of MaxAttempts retries.
type FixedInterval struct {
	Interval    time.Duration
	MaxAttempts int
}

func (p *FixedInterval) NextRetry(attempt int) (time.Duration, bool) {
	if attempt < 0 || attempt >= p.MaxAttempts {
		return 0, false
	}
	return p.Interval, true
}

// CompositePolicy asks each policy in turn; the first one that still allows
// the attempt decides the wait.
type CompositePolicy struct {
	Policies []Policy
}

func (p *CompositePolicy) NextRetry(attempt int) (time.Duration, bool) {
	for _, sub := range p.Policies {
		if delay, ok := sub.NextRetry(attempt); ok {
			return delay, true
		}
	}
	return 0, false
}

// Never disables retries.
type Never struct{}

func (Never) NextRetry(int) (time.Duration, bool) { return 0, false }
