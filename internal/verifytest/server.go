// Package verifytest is an in-memory implementation of the backend
// verification API contract, used by package tests and the local dev
// server. It mirrors the real backend's envelope shapes, status codes, and
// replace-whole-document update semantics.
package verifytest

import (
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ridelink/kycflow/internal/models"
)

// SessionCookieName is the auth cookie the fake backend reads
const SessionCookieName = "ridelink_session"

// Server holds the in-memory verification state
type Server struct {
	mu        sync.Mutex
	sessions  map[string]*models.VerificationSession
	order     []string
	jwtSecret []byte

	// SubmitDelay artificially slows the submit route so tests can race
	// concurrent submissions
	SubmitDelay time.Duration

	statusCalls int
	submitCalls int
}

// New creates an empty fake verification backend
func New() *Server {
	return &Server{
		sessions:  make(map[string]*models.VerificationSession),
		jwtSecret: []byte("verifytest-secret"),
	}
}

// Handler returns the HTTP handler implementing the verification API
func (s *Server) Handler() http.Handler {
	router := gin.New()
	s.Register(router)
	return router
}

// Register mounts the verification routes on an existing router
func (s *Server) Register(router *gin.Engine) {
	v := router.Group("/verification")
	{
		v.POST("/start", s.handleStart)
		v.PUT("/:sessionId/documents", s.handleDocuments)
		v.PUT("/:sessionId/selfie", s.handleSelfie)
		v.PUT("/:sessionId/vehicle", s.handleVehicle)
		v.PUT("/:sessionId/submit", s.handleSubmit)
		v.GET("/:sessionId/status", s.handleStatus)
		v.GET("/user/history", s.handleHistory)

		admin := v.Group("/admin", s.requireAdmin)
		{
			admin.GET("/pending", s.handleAdminPending)
			admin.GET("/:sessionId/details", s.handleAdminDetails)
			admin.PUT("/:sessionId/approve", s.handleAdminApprove)
			admin.PUT("/:sessionId/reject", s.handleAdminReject)
			admin.GET("/stats", s.handleAdminStats)
		}
	}
}

// AdminCookie mints a signed admin role cookie accepted by the admin routes
func (s *Server) AdminCookie() *http.Cookie {
	return s.roleCookie("admin")
}

// UserCookie mints a signed non-admin role cookie
func (s *Server) UserCookie() *http.Cookie {
	return s.roleCookie("driver")
}

func (s *Server) roleCookie(role string) *http.Cookie {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "verifytest-user",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString(s.jwtSecret)
	return &http.Cookie{Name: SessionCookieName, Value: signed, Path: "/"}
}

// requireAdmin enforces the admin privilege boundary: 401 without a valid
// session cookie, 403 for a non-admin role
func (s *Server) requireAdmin(c *gin.Context) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "authentication required"})
		return
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid session"})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "admin role required"})
		return
	}

	c.Next()
}

// StatusCalls returns how many status fetches have been served
func (s *Server) StatusCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

// SubmitCalls returns how many submit calls have been served
func (s *Server) SubmitCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitCalls
}

// Session returns a copy of a stored session for assertions
func (s *Server) Session(id string) (models.VerificationSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.VerificationSession{}, false
	}
	return *sess, true
}

// Decide transitions a session to a terminal status, standing in for the
// asynchronous admin actor
func (s *Server) Decide(id string, status models.Status, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	now := time.Now()
	sess.Status = status
	sess.RejectionReason = reason
	sess.ReviewedAt = &now
	sess.UpdatedAt = now
}

// ReviewSweep approves every session currently under review. The dev
// server runs this on a schedule to simulate admin turnaround.
func (s *Server) ReviewSweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviewed := 0
	now := time.Now()
	for _, sess := range s.sessions {
		if sess.Status == models.StatusUnderReview {
			sess.Status = models.StatusApproved
			sess.AdminNotes = "auto-approved by dev review sweep"
			sess.ReviewedAt = &now
			sess.UpdatedAt = now
			reviewed++
		}
	}
	return reviewed
}

type startRequest struct {
	PersonalInfo models.PersonalInfo `json:"personalInfo"`
}

func (s *Server) handleStart(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	info := req.PersonalInfo
	if info.FullName == "" || info.Email == "" || info.PhoneNumber == "" ||
		info.Address == "" || info.IDNumber == "" || info.DateOfBirth == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "personalInfo is incomplete"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.Status == models.StatusPending || sess.Status == models.StatusUnderReview {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": "verification session already exists"})
			return
		}
	}

	now := time.Now()
	session := &models.VerificationSession{
		SessionID:    uuid.New().String(),
		Status:       models.StatusPending,
		PersonalInfo: info,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.sessions[session.SessionID] = session
	s.order = append(s.order, session.SessionID)

	c.JSON(http.StatusCreated, gin.H{"success": true, "sessionId": session.SessionID})
}

// lookup fetches the session for the request or writes a 404
func (s *Server) lookup(c *gin.Context) (*models.VerificationSession, bool) {
	sess, ok := s.sessions[c.Param("sessionId")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "verification session not found"})
		return nil, false
	}
	return sess, true
}

type documentRequest struct {
	DocumentType  string `json:"documentType"`
	FrontImage    string `json:"frontImage"`
	BackImage     string `json:"backImage"`
	CaptureMethod string `json:"captureMethod"`
	DocumentData  struct {
		Type           models.DocumentType `json:"type"`
		DocumentNumber string              `json:"documentNumber"`
		LicenseNumber  string              `json:"licenseNumber"`
		LicenseClass   string              `json:"licenseClass"`
		ExpiryDate     string              `json:"expiryDate"`
	} `json:"documentData"`
}

func (s *Server) handleDocuments(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	switch req.DocumentType {
	case "id":
		if req.DocumentData.Type == models.DocumentTypeSAID &&
			!models.ValidIDNumber(models.DocumentTypeSAID, req.DocumentData.DocumentNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "sa_id document number must be exactly 13 digits"})
			return
		}
		// Replaces the whole sub-object; clients are responsible for
		// carrying sibling images forward.
		sess.Documents.IDDocument = &models.IDDocument{
			Type:           req.DocumentData.Type,
			FrontImage:     req.FrontImage,
			BackImage:      req.BackImage,
			DocumentNumber: req.DocumentData.DocumentNumber,
			ExpiryDate:     req.DocumentData.ExpiryDate,
		}
	case "driver_license":
		if req.DocumentData.LicenseNumber != "" &&
			!models.ValidLicenseNumber(req.DocumentData.LicenseNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "licence number must be numeric"})
			return
		}
		sess.Documents.DriverLicense = &models.DriverLicense{
			FrontImage:    req.FrontImage,
			BackImage:     req.BackImage,
			LicenseNumber: req.DocumentData.LicenseNumber,
			LicenseClass:  req.DocumentData.LicenseClass,
			ExpiryDate:    req.DocumentData.ExpiryDate,
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown documentType"})
		return
	}

	sess.UpdatedAt = time.Now()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

type selfieRequest struct {
	SelfieImage   string              `json:"selfieImage"`
	LivenessData  models.LivenessData `json:"livenessData"`
	LivenessScore float64             `json:"livenessScore"`
}

func (s *Server) handleSelfie(c *gin.Context) {
	var req selfieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	sess.Documents.Selfie = &models.Selfie{
		Image:         req.SelfieImage,
		LivenessScore: req.LivenessScore,
		Liveness:      req.LivenessData,
	}
	sess.UpdatedAt = time.Now()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

type vehicleRequest struct {
	FrontImage       string             `json:"frontImage"`
	BackImage        string             `json:"backImage"`
	LeftImage        string             `json:"leftImage"`
	RightImage       string             `json:"rightImage"`
	LicenseDiskImage string             `json:"licenseDiskImage"`
	VehicleData      models.VehicleData `json:"vehicleData"`
	CaptureMethod    string             `json:"captureMethod"`
}

func (s *Server) handleVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	sess.Documents.Vehicle = &models.Vehicle{
		FrontImage:            req.FrontImage,
		BackImage:             req.BackImage,
		LeftImage:             req.LeftImage,
		RightImage:            req.RightImage,
		LicenseDiskImage:      req.LicenseDiskImage,
		Make:                  req.VehicleData.Make,
		Model:                 req.VehicleData.Model,
		Year:                  req.VehicleData.Year,
		Color:                 req.VehicleData.Color,
		LicensePlate:          req.VehicleData.LicensePlate,
		LicenseDiskExpiryDate: req.VehicleData.LicenseDiskExpiryDate,
	}
	sess.UpdatedAt = time.Now()

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

func (s *Server) handleSubmit(c *gin.Context) {
	if s.SubmitDelay > 0 {
		time.Sleep(s.SubmitDelay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitCalls++

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	if missing := models.CompletionOf(sess).MissingMandatory(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "mandatory documents missing", "missing": missing})
		return
	}

	now := time.Now()
	sess.Status = models.StatusUnderReview
	sess.SubmittedAt = &now
	sess.UpdatedAt = now

	c.JSON(http.StatusOK, gin.H{"success": true, "status": sess.Status})
}

func (s *Server) handleStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusCalls++

	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": sess})
}

func (s *Server) handleHistory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]*models.VerificationSession, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		history = append(history, s.sessions[s.order[i]])
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": history})
}
