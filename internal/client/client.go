// Package client is the typed request/response boundary to the backend
// verification API. It carries no flow state beyond the persisted session
// identifier it writes on start and clears on successful submission.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ridelink/kycflow/internal/capture"
	"github.com/ridelink/kycflow/internal/config"
	"github.com/ridelink/kycflow/internal/models"
	"github.com/ridelink/kycflow/internal/store"
)

// Client talks to the backend verification API over JSON/HTTPS with
// cookie-based auth
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      store.Store
	limiter    *rate.Limiter
}

// New creates a verification API client. The store receives the session
// identifier on successful start and is cleared only on successful submit.
func New(cfg *config.Config, st store.Store) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(cfg.API.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.API.Timeout,
			Jar:     jar,
		},
		store:   st,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// apiEnvelope is the common response wrapper used by every endpoint
type apiEnvelope struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Status    models.Status   `json:"status,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Total     int             `json:"total,omitempty"`
	Page      int             `json:"page,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}

// do performs one API round trip. It returns the decoded envelope, the
// HTTP status code (0 when no response arrived), and an error from the
// client failure taxonomy when the call did not succeed.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*apiEnvelope, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &NetworkError{Err: err}
	}

	var envelope apiEnvelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &envelope); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && envelope.Success {
		return &envelope, resp.StatusCode, nil
	}

	return &envelope, resp.StatusCode, statusError(resp.StatusCode, envelope.Error)
}

// statusError maps an HTTP status onto the failure taxonomy
func statusError(code int, message string) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &UnauthorizedError{StatusCode: code}
	case http.StatusNotFound:
		return &NotFoundError{}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Message: message}
	default:
		return fmt.Errorf("API request failed with status %d: %s", code, message)
	}
}

// Start opens a verification session. All personalInfo fields must be
// present; placeholder values stand in for fields the flow backfills
// later. On success the identifier is persisted to the store.
func (c *Client) Start(ctx context.Context, info models.PersonalInfo) (string, error) {
	for field, value := range map[string]string{
		"fullName":    info.FullName,
		"email":       info.Email,
		"phoneNumber": info.PhoneNumber,
		"address":     info.Address,
		"idNumber":    info.IDNumber,
		"dateOfBirth": info.DateOfBirth,
	} {
		if value == "" {
			return "", &ValidationError{Message: field + " is required"}
		}
	}

	envelope, status, err := c.do(ctx, http.MethodPost, "/verification/start", map[string]interface{}{
		"personalInfo": info,
	})
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			return "", err
		}
		message := err.Error()
		if envelope != nil && envelope.Error != "" {
			message = envelope.Error
		}
		return "", &SessionCreateError{
			StatusCode: status,
			Message:    message,
			Conflict:   status == http.StatusConflict,
		}
	}
	if envelope.SessionID == "" {
		return "", &SessionCreateError{Message: "backend returned no session id"}
	}

	if err := c.store.SaveSessionID(envelope.SessionID); err != nil {
		return "", fmt.Errorf("failed to persist session id: %w", err)
	}

	return envelope.SessionID, nil
}

// documentUploadRequest is the wire payload for the documents route
type documentUploadRequest struct {
	DocumentType  string      `json:"documentType"`
	FrontImage    string      `json:"frontImage,omitempty"`
	BackImage     string      `json:"backImage,omitempty"`
	DocumentData  interface{} `json:"documentData"`
	CaptureMethod string      `json:"captureMethod"`
}

// UploadDocument writes one image into a named document slot. The backend
// replaces the whole document sub-object, so back-slot uploads fetch the
// current snapshot first and carry the sibling front image forward.
func (c *Client) UploadDocument(ctx context.Context, sessionID string, slot models.DocumentSlot, artifact *capture.Artifact, data interface{}) (*models.VerificationSession, error) {
	req := documentUploadRequest{
		DocumentData:  data,
		CaptureMethod: string(artifact.Method),
	}

	switch slot {
	case models.SlotIDFront, models.SlotIDBack:
		req.DocumentType = "id"
	case models.SlotDriverLicenseFront, models.SlotDriverLicenseBack:
		req.DocumentType = "driver_license"
	default:
		return nil, &UploadError{Slot: string(slot), Err: fmt.Errorf("unknown document slot")}
	}

	if slot.Back() {
		current, err := c.GetStatus(ctx, sessionID)
		if err != nil {
			return nil, &UploadError{Slot: string(slot), Err: fmt.Errorf("failed to fetch current document state: %w", err)}
		}
		switch slot {
		case models.SlotIDBack:
			if id := current.Documents.IDDocument; id != nil {
				req.FrontImage = id.FrontImage
			}
		case models.SlotDriverLicenseBack:
			if dl := current.Documents.DriverLicense; dl != nil {
				req.FrontImage = dl.FrontImage
			}
		}
		req.BackImage = artifact.DataURI()
	} else {
		req.FrontImage = artifact.DataURI()
	}

	envelope, _, err := c.do(ctx, http.MethodPut, "/verification/"+sessionID+"/documents", req)
	if err != nil {
		return nil, &UploadError{Slot: string(slot), Err: err}
	}

	return decodeSession(envelope.Data)
}

// selfieUploadRequest is the wire payload for the selfie route
type selfieUploadRequest struct {
	SelfieImage   string              `json:"selfieImage"`
	LivenessData  models.LivenessData `json:"livenessData"`
	LivenessScore float64             `json:"livenessScore"`
}

// UploadSelfie writes the selfie slot with its liveness challenge results
func (c *Client) UploadSelfie(ctx context.Context, sessionID string, artifact *capture.Artifact, liveness capture.LivenessResult) (*models.VerificationSession, error) {
	envelope, _, err := c.do(ctx, http.MethodPut, "/verification/"+sessionID+"/selfie", selfieUploadRequest{
		SelfieImage:   artifact.DataURI(),
		LivenessData:  liveness.Data,
		LivenessScore: liveness.EffectiveScore(),
	})
	if err != nil {
		return nil, &UploadError{Slot: models.StepSelfie, Err: err}
	}

	return decodeSession(envelope.Data)
}

// VehicleImages holds the five vehicle capture positions. Front is
// mandatory; the rest may be nil.
type VehicleImages struct {
	Front       *capture.Artifact
	Back        *capture.Artifact
	Left        *capture.Artifact
	Right       *capture.Artifact
	LicenseDisk *capture.Artifact
}

// vehicleUploadRequest is the wire payload for the vehicle route
type vehicleUploadRequest struct {
	FrontImage       string             `json:"frontImage,omitempty"`
	BackImage        string             `json:"backImage,omitempty"`
	LeftImage        string             `json:"leftImage,omitempty"`
	RightImage       string             `json:"rightImage,omitempty"`
	LicenseDiskImage string             `json:"licenseDiskImage,omitempty"`
	VehicleData      models.VehicleData `json:"vehicleData"`
	CaptureMethod    string             `json:"captureMethod"`
}

// UploadVehicle writes the vehicle slot: photos of the vehicle plus its
// registration details
func (c *Client) UploadVehicle(ctx context.Context, sessionID string, images VehicleImages, data models.VehicleData) (*models.VerificationSession, error) {
	if images.Front == nil {
		return nil, &UploadError{Slot: models.StepVehicleFront, Err: fmt.Errorf("front image is required")}
	}

	req := vehicleUploadRequest{
		FrontImage:    images.Front.DataURI(),
		VehicleData:   data,
		CaptureMethod: string(images.Front.Method),
	}
	if images.Back != nil {
		req.BackImage = images.Back.DataURI()
	}
	if images.Left != nil {
		req.LeftImage = images.Left.DataURI()
	}
	if images.Right != nil {
		req.RightImage = images.Right.DataURI()
	}
	if images.LicenseDisk != nil {
		req.LicenseDiskImage = images.LicenseDisk.DataURI()
	}

	envelope, _, err := c.do(ctx, http.MethodPut, "/verification/"+sessionID+"/vehicle", req)
	if err != nil {
		return nil, &UploadError{Slot: "vehicle", Err: err}
	}

	return decodeSession(envelope.Data)
}

// GetStatus fetches the authoritative session snapshot. Idempotent and
// side-effect free; used both for resume-on-restart and terminal polling.
func (c *Client) GetStatus(ctx context.Context, sessionID string) (*models.VerificationSession, error) {
	envelope, _, err := c.do(ctx, http.MethodGet, "/verification/"+sessionID+"/status", nil)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			notFound.SessionID = sessionID
		}
		return nil, err
	}

	return decodeSession(envelope.Data)
}

// Submit finalizes the session for review. The caller is responsible for
// checking the mandatory-document invariant first. This is the only
// call-site that clears the persisted session identifier, and only on
// success.
func (c *Client) Submit(ctx context.Context, sessionID string) (models.Status, error) {
	envelope, _, err := c.do(ctx, http.MethodPut, "/verification/"+sessionID+"/submit", nil)
	if err != nil {
		return "", err
	}

	// The submission went through; a failed clear only leaves a stale
	// local id that the next resume attempt detects and discards.
	_ = c.store.ClearSessionID()

	return envelope.Status, nil
}

// History returns the user's verification sessions, most recent first.
// Answers "what is my current verification state" without a session id.
func (c *Client) History(ctx context.Context) ([]models.VerificationSession, error) {
	envelope, _, err := c.do(ctx, http.MethodGet, "/verification/user/history", nil)
	if err != nil {
		return nil, err
	}

	var sessions []models.VerificationSession
	if err := json.Unmarshal(envelope.Data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}

	return sessions, nil
}

// UseCookie installs an auth cookie for all subsequent requests
func (c *Client) UseCookie(cookie *http.Cookie) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	c.httpClient.Jar.SetCookies(req.URL, []*http.Cookie{cookie})
	return nil
}

// decodeSession decodes a session snapshot from an envelope data field
func decodeSession(data json.RawMessage) (*models.VerificationSession, error) {
	var session models.VerificationSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}
