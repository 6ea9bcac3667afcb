package nats

import (
	"context"
	"errors"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const publishOperation = "nats.publish"

// transient connection states; a reconnect usually clears them.
var transientErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
}

// publishVerdict keeps cancellations out of the breaker statistics and only
// retries connection trouble. Payload and subject errors fail immediately.
func publishVerdict(err error) resilience.Verdict {
	switch {
	case err == nil:
		return resilience.Verdict{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.Verdict{}
	case resilience.IsCircuitOpen(err), isTransient(err):
		return resilience.Verdict{Retry: true, Failure: true}
	default:
		return resilience.Verdict{Failure: true}
	}
}

func isTransient(err error) bool {
	for _, target := range transientErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// asTemporary marks bus outages as ErrTemporary so callers can map them to 503.
func asTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if publishVerdict(err).Retry {
		return domain.WrapError(domain.ErrTemporary, publishOperation, err)
	}
	return err
}
