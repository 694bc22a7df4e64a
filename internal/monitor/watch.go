package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angeloszaimis/website-monitor/internal/cancellation"
)

// Watch runs a pass over urls immediately and then once per interval until
// ctx is done, handing each pass's records to report. Cancelling ctx also
// stops the pass in progress. Watch returns nil when ctx ends and the error
// of the first pass that could not start otherwise.
func (m *Monitor) Watch(
	ctx context.Context,
	urls []string,
	interval time.Duration,
	report func([]StatusRecord),
) error {
	if interval <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidInterval, interval)
	}

	pass := func() error {
		token := cancellation.New()
		stop := token.SignalOnDone(ctx)
		defer stop()

		records, err := m.Run(urls, token)
		if err != nil {
			return err
		}

		if report != nil {
			report(records)
		}
		return nil
	}

	if err := pass(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Watch stopped", slog.Duration("interval", interval))
			return nil

		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			if err := pass(); err != nil {
				return err
			}
		}
	}
}
