package client

import "fmt"

// SessionCreateError indicates the backend rejected the start payload.
// Conflict is set when an active session already exists for the user;
// callers must treat that as a resume signal, not a failure.
type SessionCreateError struct {
	StatusCode int
	Message    string
	Conflict   bool
}

func (e *SessionCreateError) Error() string {
	return fmt.Sprintf("failed to create verification session (status %d): %s", e.StatusCode, e.Message)
}

// UploadError indicates an artifact write failed. The triggering step must
// stay in its not-completed state so the user can retry.
type UploadError struct {
	Slot string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Slot, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a stale or invalid session identifier. This is
// the one failure that requires restarting the flow.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("verification session %s not found", e.SessionID)
}

// UnauthorizedError indicates a 401/403 from the backend, surfaced
// distinctly so the UI can route to a login path instead of a generic
// error banner
type UnauthorizedError struct {
	StatusCode int
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("not authorized (status %d)", e.StatusCode)
}

// ValidationError indicates a malformed field detected by the backend
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NetworkError indicates no response was received from the backend
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
