package circuitbreaker

import (
	"context"

	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
)

const ReasonOpen = "circuit open"

// Guard wraps next so that targets whose breaker is open fail immediately
// with ReasonOpen instead of being probed.
func Guard(next healthcheck.Prober, registry *Registry) healthcheck.Prober {
	return healthcheck.ProberFunc(func(ctx context.Context, rawURL string) healthcheck.Outcome {
		cb := registry.Breaker(rawURL)
		if !cb.Allow() {
			return healthcheck.Failure(ReasonOpen)
		}

		outcome := next.Check(ctx, rawURL)
		cb.Record(outcome.OK())
		return outcome
	})
}

// GuardFactory applies Guard to every prober built by next. All probers
// share the registry.
func GuardFactory(next healthcheck.Factory, registry *Registry) healthcheck.Factory {
	return func() (healthcheck.Prober, error) {
		p, err := next()
		if err != nil {
			return nil, err
		}
		return Guard(p, registry), nil
	}
}
