package models

import "time"

// Status represents the lifecycle state of a verification session
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Terminal reports whether no further transitions can occur for this status
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// DocumentType represents the kind of identity document presented
type DocumentType string

const (
	DocumentTypeSAID           DocumentType = "sa_id"
	DocumentTypePassport       DocumentType = "passport"
	DocumentTypeDriversLicense DocumentType = "drivers_license"
)

// DocumentSlot identifies a single uploadable image position within a session
type DocumentSlot string

const (
	SlotIDFront            DocumentSlot = "id_front"
	SlotIDBack             DocumentSlot = "id_back"
	SlotDriverLicenseFront DocumentSlot = "driver_license_front"
	SlotDriverLicenseBack  DocumentSlot = "driver_license_back"
)

// Back reports whether the slot is the back image of its document
func (s DocumentSlot) Back() bool {
	return s == SlotIDBack || s == SlotDriverLicenseBack
}

// PersonalInfo is collected once at session start. The backend requires a
// complete record to open a session, so callers supply placeholder values
// (e.g. "TBD") for fields not yet known and backfill them through document
// metadata later.
type PersonalInfo struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	IDNumber    string `json:"idNumber"`
	DateOfBirth string `json:"dateOfBirth"`
}

// LivenessData carries the four liveness challenge results
type LivenessData struct {
	BlinkDetected bool `json:"blinkDetected"`
	HeadTurnLeft  bool `json:"headTurnLeft"`
	HeadTurnRight bool `json:"headTurnRight"`
	SmileDetected bool `json:"smileDetected"`
}

// Selfie is the selfie document slot with its liveness results
type Selfie struct {
	Image         string       `json:"image"`
	LivenessScore float64      `json:"livenessScore"`
	Liveness      LivenessData `json:"livenessData"`
}

// IDDocument is the identity document slot. BackImage is absent when
// Type is passport.
type IDDocument struct {
	Type           DocumentType `json:"type"`
	FrontImage     string       `json:"frontImage"`
	BackImage      string       `json:"backImage,omitempty"`
	DocumentNumber string       `json:"documentNumber"`
	ExpiryDate     string       `json:"expiryDate,omitempty"`
}

// DriverLicense is the driver's licence slot. It is mandatory for every
// document type: driving authorization is verified separately from identity.
type DriverLicense struct {
	FrontImage    string `json:"frontImage"`
	BackImage     string `json:"backImage,omitempty"`
	LicenseNumber string `json:"licenseNumber"`
	LicenseClass  string `json:"licenseClass,omitempty"`
	ExpiryDate    string `json:"expiryDate,omitempty"`
}

// Vehicle is the vehicle document slot for driver onboarding
type Vehicle struct {
	FrontImage            string `json:"frontImage"`
	BackImage             string `json:"backImage,omitempty"`
	LeftImage             string `json:"leftImage,omitempty"`
	RightImage            string `json:"rightImage,omitempty"`
	LicenseDiskImage      string `json:"licenseDiskImage,omitempty"`
	Make                  string `json:"make"`
	Model                 string `json:"model"`
	Year                  int    `json:"year"`
	Color                 string `json:"color"`
	LicensePlate          string `json:"licensePlate"`
	LicenseDiskExpiryDate string `json:"licenseDiskExpiryDate,omitempty"`
}

// Documents is the fixed set of named slots on a session. Each slot is
// optional at the data-model level but collectively gated before submission.
type Documents struct {
	Selfie        *Selfie        `json:"selfie,omitempty"`
	IDDocument    *IDDocument    `json:"idDocument,omitempty"`
	DriverLicense *DriverLicense `json:"driverLicense,omitempty"`
	Vehicle       *Vehicle       `json:"vehicle,omitempty"`
}

// VerificationSession is the aggregate tracking one user's verification attempt
type VerificationSession struct {
	SessionID       string       `json:"sessionId"`
	Status          Status       `json:"status"`
	PersonalInfo    PersonalInfo `json:"personalInfo"`
	Documents       Documents    `json:"documents"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	AdminNotes      string       `json:"adminNotes,omitempty"`
	SubmittedAt     *time.Time   `json:"submittedAt,omitempty"`
	ReviewedAt      *time.Time   `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// IDDocumentData is the typed metadata for the identity document slots
type IDDocumentData struct {
	Type           DocumentType `json:"type"`
	DocumentNumber string       `json:"documentNumber"`
	ExpiryDate     string       `json:"expiryDate,omitempty"`
}

// DriverLicenseData is the typed metadata for the driver's licence slots
type DriverLicenseData struct {
	LicenseNumber string `json:"licenseNumber"`
	LicenseClass  string `json:"licenseClass,omitempty"`
	ExpiryDate    string `json:"expiryDate,omitempty"`
}

// VehicleData is the typed metadata for the vehicle slot
type VehicleData struct {
	Make                  string `json:"make"`
	Model                 string `json:"model"`
	Year                  int    `json:"year"`
	Color                 string `json:"color"`
	LicensePlate          string `json:"licensePlate"`
	LicenseDiskExpiryDate string `json:"licenseDiskExpiryDate,omitempty"`
}
