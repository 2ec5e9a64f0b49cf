package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelink/kycflow/internal/models"
	"github.com/ridelink/kycflow/internal/workflow"
)

func TestBeginReviewRequiresGate(t *testing.T) {
	env := newTestEnv(t)
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(context.Background(), testInfo))

	_, err := ctrl.BeginReview(context.Background())
	assert.ErrorIs(t, err, workflow.ErrGateNotSatisfied)
}

func TestSubmitRequiresConsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(ctx, testInfo))
	completeCaptureScreen(t, ctrl)
	completeVehicle(t, ctrl)

	review, err := ctrl.BeginReview(ctx)
	require.NoError(t, err)
	assert.False(t, review.CanSubmit())

	_, err = review.Submit(ctx)
	assert.ErrorIs(t, err, workflow.ErrConsentRequired)
	assert.Equal(t, 0, env.fake.SubmitCalls())

	review.SetConsent(true)
	assert.True(t, review.CanSubmit())
}

func TestSubmitBlockedWhileVehicleMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(ctx, testInfo))
	completeCaptureScreen(t, ctrl)

	// The capture gate passes without a vehicle photo; the review hard
	// check must still stop the submission
	review, err := ctrl.BeginReview(ctx)
	require.NoError(t, err)
	review.SetConsent(true)

	_, err = review.Submit(ctx)

	var missing *workflow.MissingDocumentsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Missing, models.StepVehicleFront)
	assert.Equal(t, 0, env.fake.SubmitCalls())
	assert.Equal(t, workflow.StateReviewAndConsent, ctrl.State())
}

func TestSubmitMovesToAwaitingDecision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(ctx, testInfo))
	completeCaptureScreen(t, ctrl)
	completeVehicle(t, ctrl)

	review, err := ctrl.BeginReview(ctx)
	require.NoError(t, err)
	review.SetConsent(true)

	status, err := review.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, status)
	assert.Equal(t, workflow.StateAwaitingDecision, ctrl.State())
	assert.Equal(t, 1, env.fake.SubmitCalls())

	persisted, err := env.store.LoadSessionID()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestDoubleSubmitIsSuppressed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(ctx, testInfo))
	completeCaptureScreen(t, ctrl)
	completeVehicle(t, ctrl)

	review, err := ctrl.BeginReview(ctx)
	require.NoError(t, err)
	review.SetConsent(true)

	env.fake.SubmitDelay = 200 * time.Millisecond

	type result struct {
		status models.Status
		err    error
	}
	done := make(chan result, 1)
	go func() {
		status, err := review.Submit(ctx)
		done <- result{status, err}
	}()

	// The first submission is mid-flight; a second click must be rejected
	// without reaching the backend
	time.Sleep(50 * time.Millisecond)
	_, err = review.Submit(ctx)
	assert.ErrorIs(t, err, workflow.ErrSubmitInFlight)

	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, models.StatusUnderReview, first.status)
	assert.Equal(t, 1, env.fake.SubmitCalls())
}

func TestAwaitDecisionApproved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(ctx, testInfo))
	completeCaptureScreen(t, ctrl)
	completeVehicle(t, ctrl)

	review, err := ctrl.BeginReview(ctx)
	require.NoError(t, err)
	review.SetConsent(true)
	_, err = review.Submit(ctx)
	require.NoError(t, err)

	sessionID := ctrl.SessionID()
	go func() {
		time.Sleep(60 * time.Millisecond)
		env.fake.Decide(sessionID, models.StatusApproved, "")
	}()

	status, err := ctrl.AwaitDecision(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, status)
	assert.Equal(t, workflow.StateApproved, ctrl.State())
}

func TestAwaitDecisionRejectedExposesReason(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ctrl := env.newController()
	require.NoError(t, ctrl.Init(ctx, testInfo))
	completeCaptureScreen(t, ctrl)
	completeVehicle(t, ctrl)

	review, err := ctrl.BeginReview(ctx)
	require.NoError(t, err)
	review.SetConsent(true)
	_, err = review.Submit(ctx)
	require.NoError(t, err)

	sessionID := ctrl.SessionID()
	go func() {
		time.Sleep(60 * time.Millisecond)
		env.fake.Decide(sessionID, models.StatusRejected, "selfie too dark")
	}()

	status, err := ctrl.AwaitDecision(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, status)
	assert.Equal(t, workflow.StateRejected, ctrl.State())

	reason, _ := ctrl.RejectionReason()
	assert.Equal(t, "selfie too dark", reason)
}
