package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotCollecting is returned when a capture step is attempted outside
	// the collecting state
	ErrNotCollecting = errors.New("not collecting documents")

	// ErrUploadInFlight is returned when a step already has an upload in
	// progress; the capture control stays disabled until it resolves
	ErrUploadInFlight = errors.New("upload already in flight for this step")

	// ErrGateNotSatisfied is returned when review is requested before the
	// capture gate passes
	ErrGateNotSatisfied = errors.New("capture steps incomplete")

	// ErrConsentRequired is returned when submission is attempted without
	// the consent checkbox
	ErrConsentRequired = errors.New("consent is required before submission")

	// ErrSubmitInFlight suppresses a second submission while one is pending
	ErrSubmitInFlight = errors.New("submission already in flight")
)

// MissingDocumentsError blocks submission and names exactly which mandatory
// artifacts are absent
type MissingDocumentsError struct {
	Missing []string
}

func (e *MissingDocumentsError) Error() string {
	return "mandatory documents missing: " + strings.Join(e.Missing, ", ")
}

// PollError indicates the status poll failed repeatedly. The poll loop
// itself keeps running; this only tells the UI it cannot currently confirm
// the status.
type PollError struct {
	Consecutive int
	Err         error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("status unconfirmed after %d consecutive poll failures: %v", e.Consecutive, e.Err)
}

func (e *PollError) Unwrap() error {
	return e.Err
}
