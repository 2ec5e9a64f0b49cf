package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridelink/kycflow/internal/capture"
	"github.com/ridelink/kycflow/internal/client"
	"github.com/ridelink/kycflow/internal/config"
	"github.com/ridelink/kycflow/internal/models"
	"github.com/ridelink/kycflow/internal/store"
	"github.com/ridelink/kycflow/internal/verifytest"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 32)...)

var testInfo = models.PersonalInfo{
	FullName:    "Jane Doe",
	Email:       "jane@x.com",
	PhoneNumber: "+27821234567",
	Address:     "TBD",
	IDNumber:    "TBD",
	DateOfBirth: "2024-01-01",
}

func newTestClient(t *testing.T) (*client.Client, *verifytest.Server, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := verifytest.New()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	st := store.NewFileStore(t.TempDir(), "test")
	cfg := &config.Config{
		API: config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second},
	}
	return client.New(cfg, st), fake, st
}

func testArtifact(t *testing.T) *capture.Artifact {
	t.Helper()
	artifact, err := capture.FromBytes(pngBytes, capture.MethodCamera)
	require.NoError(t, err)
	return artifact
}

func TestStartPersistsSessionID(t *testing.T) {
	cl, _, st := newTestClient(t)

	sessionID, err := cl.Start(context.Background(), testInfo)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	persisted, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Equal(t, sessionID, persisted)
}

func TestStartRejectsIncompleteInfo(t *testing.T) {
	cl, fake, _ := newTestClient(t)

	info := testInfo
	info.Email = ""
	_, err := cl.Start(context.Background(), info)

	var validationErr *client.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	// Rejected client-side, before any round trip
	assert.Equal(t, 0, fake.StatusCalls())
}

func TestStartConflictIsResumeSignal(t *testing.T) {
	cl, _, _ := newTestClient(t)

	_, err := cl.Start(context.Background(), testInfo)
	require.NoError(t, err)

	_, err = cl.Start(context.Background(), testInfo)
	var createErr *client.SessionCreateError
	require.ErrorAs(t, err, &createErr)
	assert.True(t, createErr.Conflict)
}

func TestUploadBackPreservesFront(t *testing.T) {
	cl, _, _ := newTestClient(t)
	ctx := context.Background()

	sessionID, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)

	idData := models.IDDocumentData{Type: models.DocumentTypeSAID, DocumentNumber: "9202204720082"}

	front := testArtifact(t)
	_, err = cl.UploadDocument(ctx, sessionID, models.SlotIDFront, front, idData)
	require.NoError(t, err)

	back := testArtifact(t)
	_, err = cl.UploadDocument(ctx, sessionID, models.SlotIDBack, back, idData)
	require.NoError(t, err)

	snap, err := cl.GetStatus(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, snap.Documents.IDDocument)
	assert.Equal(t, front.DataURI(), snap.Documents.IDDocument.FrontImage)
	assert.Equal(t, back.DataURI(), snap.Documents.IDDocument.BackImage)
}

func TestUploadSelfieRoundTrip(t *testing.T) {
	cl, _, _ := newTestClient(t)
	ctx := context.Background()

	sessionID, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)

	liveness := capture.LivenessResult{
		Data: models.LivenessData{
			BlinkDetected: true,
			HeadTurnLeft:  true,
			HeadTurnRight: false,
			SmileDetected: true,
		},
		Score: 0.82,
	}
	_, err = cl.UploadSelfie(ctx, sessionID, testArtifact(t), liveness)
	require.NoError(t, err)

	snap, err := cl.GetStatus(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, snap.Documents.Selfie)
	assert.Equal(t, 0.82, snap.Documents.Selfie.LivenessScore)
	assert.Equal(t, liveness.Data, snap.Documents.Selfie.Liveness)
}

func TestGetStatusNotFound(t *testing.T) {
	cl, _, _ := newTestClient(t)

	_, err := cl.GetStatus(context.Background(), "no-such-session")

	var notFound *client.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "no-such-session", notFound.SessionID)
}

func TestUploadRejectsInvalidSAIDNumber(t *testing.T) {
	cl, _, _ := newTestClient(t)
	ctx := context.Background()

	sessionID, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)

	idData := models.IDDocumentData{Type: models.DocumentTypeSAID, DocumentNumber: "123"}
	_, err = cl.UploadDocument(ctx, sessionID, models.SlotIDFront, testArtifact(t), idData)

	var uploadErr *client.UploadError
	require.ErrorAs(t, err, &uploadErr)
	var validationErr *client.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// fillMandatory uploads the full mandatory document set
func fillMandatory(t *testing.T, cl *client.Client, sessionID string) {
	t.Helper()
	ctx := context.Background()

	_, err := cl.UploadSelfie(ctx, sessionID, testArtifact(t), capture.LivenessResult{
		Data:  models.LivenessData{BlinkDetected: true, HeadTurnLeft: true, HeadTurnRight: true, SmileDetected: true},
		Score: 0.9,
	})
	require.NoError(t, err)

	idData := models.IDDocumentData{Type: models.DocumentTypeSAID, DocumentNumber: "9202204720082"}
	_, err = cl.UploadDocument(ctx, sessionID, models.SlotIDFront, testArtifact(t), idData)
	require.NoError(t, err)
	_, err = cl.UploadDocument(ctx, sessionID, models.SlotIDBack, testArtifact(t), idData)
	require.NoError(t, err)

	licenseData := models.DriverLicenseData{LicenseNumber: "12345678", LicenseClass: "B", ExpiryDate: "2027-06-30"}
	_, err = cl.UploadDocument(ctx, sessionID, models.SlotDriverLicenseFront, testArtifact(t), licenseData)
	require.NoError(t, err)

	_, err = cl.UploadVehicle(ctx, sessionID, client.VehicleImages{Front: testArtifact(t)}, models.VehicleData{
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2019,
		Color:        "white",
		LicensePlate: "CA 123-456",
	})
	require.NoError(t, err)
}

func TestSubmitClearsPersistedSession(t *testing.T) {
	cl, _, st := newTestClient(t)
	ctx := context.Background()

	sessionID, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)
	fillMandatory(t, cl, sessionID)

	status, err := cl.Submit(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, status)

	persisted, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestSubmitFailureKeepsPersistedSession(t *testing.T) {
	cl, _, st := newTestClient(t)
	ctx := context.Background()

	sessionID, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)

	// Nothing uploaded; the backend rejects the submission
	_, err = cl.Submit(ctx, sessionID)
	require.Error(t, err)

	persisted, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Equal(t, sessionID, persisted)
}

func TestHistoryMostRecentFirst(t *testing.T) {
	cl, fake, _ := newTestClient(t)
	ctx := context.Background()

	first, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)
	fake.Decide(first, models.StatusRejected, "blurred documents")

	second, err := cl.Start(ctx, testInfo)
	require.NoError(t, err)

	history, err := cl.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second, history[0].SessionID)
	assert.Equal(t, first, history[1].SessionID)
}
