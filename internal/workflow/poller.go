package workflow

import (
	"context"
	"log"
	"time"

	"github.com/ridelink/kycflow/internal/client"
	"github.com/ridelink/kycflow/internal/config"
	"github.com/ridelink/kycflow/internal/models"
)

// PollUpdate is one observation from the status poll loop: either a
// snapshot or a surfaced poll failure, never both
type PollUpdate struct {
	Session *models.VerificationSession
	Err     error
}

// Poller repeatedly fetches a session's status at a fixed cadence until a
// terminal status is observed or the context is cancelled. Transient fetch
// failures are logged and retried; only after FailureBudget consecutive
// failures is a PollError surfaced, and the loop keeps running even then.
type Poller struct {
	client        *client.Client
	interval      time.Duration
	failureBudget int
}

// NewPoller creates a status poller from the poll configuration
func NewPoller(cl *client.Client, cfg config.PollConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	budget := cfg.FailureBudget
	if budget <= 0 {
		budget = 3
	}
	return &Poller{
		client:        cl,
		interval:      interval,
		failureBudget: budget,
	}
}

// Run starts the poll loop and returns its update channel. The channel is
// closed when a terminal status has been delivered or ctx is cancelled; no
// status fetches happen after either. Polling begins immediately rather
// than waiting out the first interval.
func (p *Poller) Run(ctx context.Context, sessionID string) <-chan PollUpdate {
	updates := make(chan PollUpdate, 1)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		failures := 0
		for {
			snap, err := p.client.GetStatus(ctx, sessionID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				log.Printf("status poll failed (%d consecutive): %v", failures, err)
				if failures >= p.failureBudget {
					select {
					case updates <- PollUpdate{Err: &PollError{Consecutive: failures, Err: err}}:
					case <-ctx.Done():
						return
					}
					failures = 0
				}
			} else {
				failures = 0
				select {
				case updates <- PollUpdate{Session: snap}:
				case <-ctx.Done():
					return
				}
				if snap.Status.Terminal() {
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return updates
}
