package workflow

import (
	"context"

	"github.com/ridelink/kycflow/internal/models"
)

// Review is a thin state holder layered on the controller for the final
// review-and-consent screen. It holds only the consent flag; it is
// discarded on navigation away and the underlying session stays resumable
// on the backend.
type Review struct {
	ctrl       *Controller
	completion models.Completion
	consent    bool
}

// SetConsent records the explicit consent checkbox
func (r *Review) SetConsent(consent bool) {
	r.consent = consent
}

// Consent reports whether consent has been given
func (r *Review) Consent() bool {
	return r.consent
}

// Missing names the mandatory artifacts still absent from the session
func (r *Review) Missing() []string {
	return r.completion.MissingMandatory()
}

// CanSubmit derives the submit control's enabled state: consent given and
// every mandatory artifact present
func (r *Review) CanSubmit() bool {
	return r.consent && r.completion.MandatorySatisfied()
}

// Submit performs the final submission. It re-fetches the authoritative
// snapshot and re-checks the hard mandatory set before calling the
// backend; the submit call is never made while any mandatory artifact is
// missing, consent is unchecked, or another submission is in flight. On
// failure the controller stays in review and the persisted session
// identifier is untouched, so the user can retry.
func (r *Review) Submit(ctx context.Context) (models.Status, error) {
	c := r.ctrl

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	c.submitting = true
	sessionID := c.sessionID
	c.mu.Unlock()

	abort := func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}

	if !r.consent {
		abort()
		return "", ErrConsentRequired
	}

	// Vehicle capture happens on a separate screen the capture gate does
	// not supervise, so the hard check runs against a fresh snapshot here.
	snap, err := c.client.GetStatus(ctx, sessionID)
	if err != nil {
		abort()
		return "", err
	}
	r.completion = models.CompletionOf(snap)
	if missing := r.completion.MissingMandatory(); len(missing) > 0 {
		abort()
		return "", &MissingDocumentsError{Missing: missing}
	}

	c.mu.Lock()
	c.session = snap
	c.state = StateSubmitting
	c.mu.Unlock()

	status, err := c.client.Submit(ctx, sessionID)
	if err != nil {
		c.mu.Lock()
		c.submitting = false
		c.state = StateReviewAndConsent
		c.mu.Unlock()
		return "", err
	}

	c.mu.Lock()
	c.submitting = false
	c.state = StateAwaitingDecision
	if c.session != nil {
		c.session.Status = status
	}
	c.mu.Unlock()

	return status, nil
}
