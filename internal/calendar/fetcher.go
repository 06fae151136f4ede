// Package calendar retrieves participant availability. The fetcher fans one
// lookup per participant out concurrently and joins the full batch; a failed
// lookup marks that participant unknown instead of failing the batch.
package calendar

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/schedule"
)

// Provider returns the raw busy intervals for one participant over the
// window. Implementations may return overlapping or out-of-order intervals;
// the fetcher normalizes them.
type Provider interface {
	BusyIntervals(ctx context.Context, participant string, window schedule.Interval) ([]schedule.Interval, error)
}

// maxConcurrentFetches caps the fan-out so a request with many attendees
// cannot exhaust the provider's rate limit in one burst.
const maxConcurrentFetches = 8

// Fetcher runs per-participant availability lookups concurrently.
type Fetcher struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewFetcher builds a fetcher with the given per-lookup timeout.
func NewFetcher(provider Provider, timeout time.Duration) *Fetcher {
	return NewFetcherWithLogger(provider, timeout, nil)
}

// NewFetcherWithLogger builds a fetcher with a base logger.
func NewFetcherWithLogger(provider Provider, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{provider: provider, timeout: timeout, logger: logger}
}

// FetchAll retrieves busy intervals for every participant. The returned map
// always carries one entry per participant; entries with Known=false record a
// failed lookup (the participant is treated as unconstrained downstream).
// Intervals are normalized and clipped to the window before return.
func (f *Fetcher) FetchAll(ctx context.Context, participants []string, window schedule.Interval) map[string]application.ParticipantAvailability {
	results := make([]application.ParticipantAvailability, len(participants))

	// Without a provider every participant is unknown; the service still
	// answers, it just cannot rule anything out.
	if f.provider == nil {
		availability := make(map[string]application.ParticipantAvailability, len(participants))
		for _, participant := range participants {
			availability[participant] = application.ParticipantAvailability{}
		}
		return availability
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentFetches)

	for i, participant := range participants {
		group.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(groupCtx, f.timeout)
			defer cancel()

			busy, err := f.provider.BusyIntervals(fetchCtx, participant, window)
			if err != nil {
				// Per-participant failure never fails the batch.
				f.logger.WarnContext(ctx, "calendar fetch failed",
					"participant", participant,
					"error", err,
				)
				return nil
			}
			results[i] = application.ParticipantAvailability{
				Busy:  schedule.Normalize(busy, window),
				Known: true,
			}
			return nil
		})
	}
	// Goroutines only ever return nil; Wait is the batch join point.
	_ = group.Wait()

	availability := make(map[string]application.ParticipantAvailability, len(participants))
	for i, participant := range participants {
		availability[participant] = results[i]
	}
	return availability
}
