// Package workflow drives a driver through the verification flow: it owns
// the current session identifier, tracks which capture steps are complete,
// validates step preconditions, persists continuity across interruptions,
// and walks the session through review, submission, and the final decision.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ridelink/kycflow/internal/capture"
	"github.com/ridelink/kycflow/internal/client"
	"github.com/ridelink/kycflow/internal/config"
	"github.com/ridelink/kycflow/internal/models"
	"github.com/ridelink/kycflow/internal/store"
)

// State is the controller's position in the verification flow
type State string

const (
	StateInitializing        State = "initializing"
	StateCollectingDocuments State = "collecting_documents"
	StateReviewAndConsent    State = "review_and_consent"
	StateSubmitting          State = "submitting"
	StateAwaitingDecision    State = "awaiting_decision"
	StateApproved            State = "approved"
	StateRejected            State = "rejected"
)

// Controller is the verification workflow state machine. It is the only
// component that remembers where the user is in the flow; everything else
// is a stateless transformer or a network call.
type Controller struct {
	client  *client.Client
	store   store.Store
	pollCfg config.PollConfig

	mu          sync.Mutex
	state       State
	sessionID   string
	docType     models.DocumentType
	idData      models.IDDocumentData
	licenseData models.DriverLicenseData
	completed   map[string]bool
	previews    map[string]string
	uploading   map[string]bool
	submitting  bool
	session     *models.VerificationSession
}

// NewController creates a workflow controller with explicit dependencies,
// so it can be driven and tested by construction
func NewController(cl *client.Client, st store.Store, pollCfg config.PollConfig) *Controller {
	return &Controller{
		client:    cl,
		store:     st,
		pollCfg:   pollCfg,
		state:     StateInitializing,
		completed: make(map[string]bool),
		previews:  make(map[string]string),
		uploading: make(map[string]bool),
	}
}

// Init resumes a persisted session when one exists and is still open, or
// creates a fresh one from the supplied personal info. A completed step is
// never silently lost across a reload: rehydration derives the completed
// set from the backend snapshot, not from local memory.
func (c *Controller) Init(ctx context.Context, info models.PersonalInfo) error {
	if id, err := c.store.LoadSessionID(); err == nil && id != "" {
		snap, err := c.client.GetStatus(ctx, id)
		if err == nil {
			c.rehydrate(snap)
			return nil
		}

		var notFound *client.NotFoundError
		if errors.As(err, &notFound) {
			// Stale identifier; drop it and start over
			_ = c.store.ClearSessionID()
		}
		log.Printf("session resume failed, starting fresh: %v", err)
	}

	sessionID, err := c.client.Start(ctx, info)
	if err != nil {
		var createErr *client.SessionCreateError
		if errors.As(err, &createErr) && createErr.Conflict {
			// The backend already holds an active session for this user.
			// That is a resume signal, not a failure.
			return c.resumeFromHistory(ctx, err)
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	c.state = StateCollectingDocuments
	return nil
}

// resumeFromHistory recovers the active session when start reports a conflict
func (c *Controller) resumeFromHistory(ctx context.Context, cause error) error {
	sessions, err := c.client.History(ctx)
	if err != nil {
		return fmt.Errorf("active session exists but could not be listed: %w", err)
	}

	for i := range sessions {
		s := &sessions[i]
		if s.Status == models.StatusPending || s.Status == models.StatusUnderReview {
			if err := c.store.SaveSessionID(s.SessionID); err != nil {
				return fmt.Errorf("failed to persist resumed session id: %w", err)
			}
			c.rehydrate(s)
			return nil
		}
	}

	return fmt.Errorf("active session exists but was not found in history: %w", cause)
}

// rehydrate rebuilds local flow state from a backend snapshot. It is a pure
// function of the snapshot, so resuming twice yields identical state.
func (c *Controller) rehydrate(snap *models.VerificationSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionID = snap.SessionID
	c.session = snap
	c.completed = make(map[string]bool)
	c.previews = make(map[string]string)
	c.uploading = make(map[string]bool)
	c.submitting = false

	comp := models.CompletionOf(snap)
	c.docType = comp.DocumentType
	c.completed[models.StepSelfie] = comp.Selfie
	c.completed[models.StepIDFront] = comp.IDFront
	c.completed[models.StepIDBack] = comp.IDBack
	c.completed[models.StepDriverLicenseFront] = comp.DriverLicenseFront
	c.completed[models.StepVehicleFront] = comp.VehicleFront

	// Previews are regenerated from the stored artifacts
	if sel := snap.Documents.Selfie; sel != nil && sel.Image != "" {
		c.previews[models.StepSelfie] = sel.Image
	}
	if id := snap.Documents.IDDocument; id != nil {
		if id.FrontImage != "" {
			c.previews[models.StepIDFront] = id.FrontImage
		}
		if id.BackImage != "" {
			c.previews[models.StepIDBack] = id.BackImage
		}
		c.idData = models.IDDocumentData{
			Type:           id.Type,
			DocumentNumber: id.DocumentNumber,
			ExpiryDate:     id.ExpiryDate,
		}
	}
	if dl := snap.Documents.DriverLicense; dl != nil {
		if dl.FrontImage != "" {
			c.previews[models.StepDriverLicenseFront] = dl.FrontImage
		}
		c.licenseData = models.DriverLicenseData{
			LicenseNumber: dl.LicenseNumber,
			LicenseClass:  dl.LicenseClass,
			ExpiryDate:    dl.ExpiryDate,
		}
	}
	if v := snap.Documents.Vehicle; v != nil && v.FrontImage != "" {
		c.previews[models.StepVehicleFront] = v.FrontImage
	}

	switch snap.Status {
	case models.StatusPending:
		c.state = StateCollectingDocuments
	case models.StatusUnderReview:
		c.state = StateAwaitingDecision
	case models.StatusApproved:
		c.state = StateApproved
	case models.StatusRejected:
		c.state = StateRejected
	}
}

// State returns the controller's current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the active session identifier
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Session returns the last snapshot seen from the backend
func (c *Controller) Session() *models.VerificationSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// StepCompleted reports whether a capture step has succeeded
func (c *Controller) StepCompleted(step string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[step]
}

// Preview returns the display reference for a completed step's artifact
func (c *Controller) Preview(step string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previews[step]
}

// SetDocumentType selects the identity document kind for the session
func (c *Controller) SetDocumentType(t models.DocumentType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docType = t
	c.idData.Type = t
}

// SetIDDocumentData updates the identity document metadata. The gate
// predicate re-evaluates on every change, so the Next control's enabled
// state always matches current data.
func (c *Controller) SetIDDocumentData(d models.IDDocumentData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d.Type != "" {
		c.docType = d.Type
	} else {
		d.Type = c.docType
	}
	c.idData = d
}

// SetDriverLicenseData updates the driver's licence metadata
func (c *Controller) SetDriverLicenseData(d models.DriverLicenseData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.licenseData = d
}

// CanProceed is the capture-screen gate: all capture-screen steps complete
// (back image waived for passports) and the document numbers valid. The
// vehicle step lives on its own screen and is enforced by the review
// check, not here; both derive from the same completion model.
func (c *Controller) CanProceed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canProceedLocked()
}

func (c *Controller) canProceedLocked() bool {
	if !c.completed[models.StepSelfie] || !c.completed[models.StepIDFront] {
		return false
	}
	if c.docType != models.DocumentTypePassport && !c.completed[models.StepIDBack] {
		return false
	}
	if !c.completed[models.StepDriverLicenseFront] {
		return false
	}
	if !models.ValidIDNumber(c.docType, c.idData.DocumentNumber) {
		return false
	}
	if !models.ValidLicenseNumber(c.licenseData.LicenseNumber) {
		return false
	}
	if c.licenseData.ExpiryDate == "" {
		return false
	}
	return true
}

// beginStep serializes uploads per step: a step with an upload in flight
// rejects a second one until the first resolves
func (c *Controller) beginStep(step string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateCollectingDocuments {
		return ErrNotCollecting
	}
	if c.uploading[step] {
		return ErrUploadInFlight
	}
	c.uploading[step] = true
	return nil
}

// endStep records the outcome of a step upload. On failure the completed
// flag stays unset so the user can retry; no other step is affected.
func (c *Controller) endStep(step, preview string, snap *models.VerificationSession, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uploading[step] = false
	if ok {
		c.completed[step] = true
		c.previews[step] = preview
		if snap != nil {
			c.session = snap
		}
	}
}

// CaptureSelfie uploads the selfie with its liveness results. Redoing the
// step overwrites the prior artifact.
func (c *Controller) CaptureSelfie(ctx context.Context, artifact *capture.Artifact, liveness capture.LivenessResult) error {
	if err := c.beginStep(models.StepSelfie); err != nil {
		return err
	}
	snap, err := c.client.UploadSelfie(ctx, c.SessionID(), artifact, liveness)
	c.endStep(models.StepSelfie, artifact.DataURI(), snap, err == nil)
	return err
}

// CaptureIDFront uploads the identity document front image
func (c *Controller) CaptureIDFront(ctx context.Context, artifact *capture.Artifact) error {
	if err := c.beginStep(models.StepIDFront); err != nil {
		return err
	}
	c.mu.Lock()
	data := c.idData
	c.mu.Unlock()
	snap, err := c.client.UploadDocument(ctx, c.SessionID(), models.SlotIDFront, artifact, data)
	c.endStep(models.StepIDFront, artifact.DataURI(), snap, err == nil)
	return err
}

// CaptureIDBack uploads the identity document back image. Not needed for
// passports; the gate waives it there.
func (c *Controller) CaptureIDBack(ctx context.Context, artifact *capture.Artifact) error {
	if err := c.beginStep(models.StepIDBack); err != nil {
		return err
	}
	c.mu.Lock()
	data := c.idData
	c.mu.Unlock()
	snap, err := c.client.UploadDocument(ctx, c.SessionID(), models.SlotIDBack, artifact, data)
	c.endStep(models.StepIDBack, artifact.DataURI(), snap, err == nil)
	return err
}

// CaptureDriverLicense uploads the driver's licence front image. This slot
// is mandatory for every document type, including when the identity
// document itself is a driver's licence.
func (c *Controller) CaptureDriverLicense(ctx context.Context, artifact *capture.Artifact) error {
	if err := c.beginStep(models.StepDriverLicenseFront); err != nil {
		return err
	}
	c.mu.Lock()
	data := c.licenseData
	c.mu.Unlock()
	snap, err := c.client.UploadDocument(ctx, c.SessionID(), models.SlotDriverLicenseFront, artifact, data)
	c.endStep(models.StepDriverLicenseFront, artifact.DataURI(), snap, err == nil)
	return err
}

// CaptureVehicle uploads the vehicle photos and registration details
func (c *Controller) CaptureVehicle(ctx context.Context, images client.VehicleImages, data models.VehicleData) error {
	if err := c.beginStep(models.StepVehicleFront); err != nil {
		return err
	}
	var preview string
	if images.Front != nil {
		preview = images.Front.DataURI()
	}
	snap, err := c.client.UploadVehicle(ctx, c.SessionID(), images, data)
	c.endStep(models.StepVehicleFront, preview, snap, err == nil)
	return err
}

// BeginReview transitions to review. It re-fetches the authoritative
// snapshot rather than trusting local flags, since a prior step could have
// failed after partially applying.
func (c *Controller) BeginReview(ctx context.Context) (*Review, error) {
	c.mu.Lock()
	if c.state != StateCollectingDocuments {
		c.mu.Unlock()
		return nil, ErrNotCollecting
	}
	if !c.canProceedLocked() {
		c.mu.Unlock()
		return nil, ErrGateNotSatisfied
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	snap, err := c.client.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.session = snap
	c.state = StateReviewAndConsent
	c.mu.Unlock()

	return &Review{ctrl: c, completion: models.CompletionOf(snap)}, nil
}

// AwaitDecision polls the session status until a terminal decision arrives
// or ctx is cancelled, and moves the controller to the matching terminal
// state. Transient poll failures are logged and absorbed.
func (c *Controller) AwaitDecision(ctx context.Context) (models.Status, error) {
	c.mu.Lock()
	if c.state != StateAwaitingDecision {
		c.mu.Unlock()
		return "", fmt.Errorf("not awaiting a decision (state %s)", c.state)
	}
	sessionID := c.sessionID
	c.mu.Unlock()

	poller := NewPoller(c.client, c.pollCfg)
	for update := range poller.Run(ctx, sessionID) {
		if update.Err != nil {
			log.Printf("awaiting decision: %v", update.Err)
			continue
		}

		c.mu.Lock()
		c.session = update.Session
		switch update.Session.Status {
		case models.StatusApproved:
			c.state = StateApproved
		case models.StatusRejected:
			c.state = StateRejected
		}
		state := c.state
		c.mu.Unlock()

		if state == StateApproved || state == StateRejected {
			return update.Session.Status, nil
		}
	}

	return "", ctx.Err()
}

// RejectionReason returns the reason shown on the rejected screen
func (c *Controller) RejectionReason() (reason, adminNotes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return "", ""
	}
	return c.session.RejectionReason, c.session.AdminNotes
}

// Restart discards the persisted session identifier and resets the
// controller so a fresh Init can begin, e.g. after a rejection
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ClearSessionID(); err != nil {
		return fmt.Errorf("failed to discard session: %w", err)
	}

	c.state = StateInitializing
	c.sessionID = ""
	c.docType = ""
	c.idData = models.IDDocumentData{}
	c.licenseData = models.DriverLicenseData{}
	c.completed = make(map[string]bool)
	c.previews = make(map[string]string)
	c.uploading = make(map[string]bool)
	c.submitting = false
	c.session = nil
	return nil
}
