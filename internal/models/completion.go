package models

// Completion is the flat completion view of a session snapshot. All
// mandatory-field checks derive from this one struct instead of re-walking
// optional document chains per screen.
type Completion struct {
	DocumentType       DocumentType
	Selfie             bool
	IDFront            bool
	IDBack             bool
	DriverLicenseFront bool
	DriverLicenseBack  bool
	VehicleFront       bool
}

// Mandatory step names as surfaced to the user when missing
const (
	StepSelfie             = "selfie"
	StepIDFront            = "id_front"
	StepIDBack             = "id_back"
	StepDriverLicenseFront = "driver_license_front"
	StepVehicleFront       = "vehicle_front"
)

// CompletionOf computes the completion view from a session snapshot.
// An image present in a slot means the corresponding step is complete.
func CompletionOf(s *VerificationSession) Completion {
	var c Completion
	if s == nil {
		return c
	}
	if sel := s.Documents.Selfie; sel != nil && sel.Image != "" {
		c.Selfie = true
	}
	if id := s.Documents.IDDocument; id != nil {
		c.DocumentType = id.Type
		c.IDFront = id.FrontImage != ""
		c.IDBack = id.BackImage != ""
	}
	if dl := s.Documents.DriverLicense; dl != nil {
		c.DriverLicenseFront = dl.FrontImage != ""
		c.DriverLicenseBack = dl.BackImage != ""
	}
	if v := s.Documents.Vehicle; v != nil {
		c.VehicleFront = v.FrontImage != ""
	}
	return c
}

// BackImageRequired reports whether the ID document needs a back image.
// Passports have no back page to capture.
func (c Completion) BackImageRequired() bool {
	return c.DocumentType != DocumentTypePassport
}

// MissingMandatory returns the mandatory artifacts absent from the session.
// The mandatory set is {selfie, ID front, driver's licence front, vehicle
// front} regardless of document type.
func (c Completion) MissingMandatory() []string {
	var missing []string
	if !c.Selfie {
		missing = append(missing, StepSelfie)
	}
	if !c.IDFront {
		missing = append(missing, StepIDFront)
	}
	if !c.DriverLicenseFront {
		missing = append(missing, StepDriverLicenseFront)
	}
	if !c.VehicleFront {
		missing = append(missing, StepVehicleFront)
	}
	return missing
}

// MandatorySatisfied reports whether every mandatory artifact is present
func (c Completion) MandatorySatisfied() bool {
	return len(c.MissingMandatory()) == 0
}
