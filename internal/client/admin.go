package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// PendingPage is one page of sessions awaiting admin review
type PendingPage struct {
	Sessions []SessionSummary
	Total    int
	Page     int
	Limit    int
}

// SessionSummary is the condensed listing entry for the review queue
type SessionSummary struct {
	SessionID   string `json:"sessionId"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submittedAt,omitempty"`
}

// Stats summarizes session counts by status for the admin dashboard
type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"underReview"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
}

// The admin operations cross a privilege boundary enforced by the backend's
// role cookie. A 401/403 surfaces as UnauthorizedError so the UI can route
// to a login path instead of a generic failure banner.

// ListPending returns a page of sessions awaiting review
func (c *Client) ListPending(ctx context.Context, page, limit int) (*PendingPage, error) {
	path := "/verification/admin/pending?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	envelope, _, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var sessions []SessionSummary
	if err := json.Unmarshal(envelope.Data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode pending sessions: %w", err)
	}

	return &PendingPage{
		Sessions: sessions,
		Total:    envelope.Total,
		Page:     envelope.Page,
		Limit:    envelope.Limit,
	}, nil
}

// GetDetails returns the full session aggregate for review, including all
// document images
func (c *Client) GetDetails(ctx context.Context, sessionID string) (*SessionDetails, error) {
	envelope, _, err := c.do(ctx, http.MethodGet, "/verification/admin/"+sessionID+"/details", nil)
	if err != nil {
		return nil, err
	}

	var details SessionDetails
	if err := json.Unmarshal(envelope.Data, &details); err != nil {
		return nil, fmt.Errorf("failed to decode session details: %w", err)
	}

	return &details, nil
}

// SessionDetails is the full aggregate as presented to a reviewer
type SessionDetails struct {
	SessionID    string          `json:"sessionId"`
	Status       string          `json:"status"`
	PersonalInfo json.RawMessage `json:"personalInfo"`
	Documents    json.RawMessage `json:"documents"`
	SubmittedAt  string          `json:"submittedAt,omitempty"`
}

// Approve marks a submitted session approved
func (c *Client) Approve(ctx context.Context, sessionID, notes string) error {
	_, _, err := c.do(ctx, http.MethodPut, "/verification/admin/"+sessionID+"/approve", map[string]string{
		"approvalNotes": notes,
	})
	return err
}

// Reject marks a submitted session rejected with a reason shown to the driver
func (c *Client) Reject(ctx context.Context, sessionID, reason, notes string) error {
	_, _, err := c.do(ctx, http.MethodPut, "/verification/admin/"+sessionID+"/reject", map[string]string{
		"rejectionReason": reason,
		"adminNotes":      notes,
	})
	return err
}

// GetStats returns session counts by status
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	envelope, _, err := c.do(ctx, http.MethodGet, "/verification/admin/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats Stats
	if err := json.Unmarshal(envelope.Data, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}

	return &stats, nil
}
