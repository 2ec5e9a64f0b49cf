package models

// numeric reports whether s is non-empty and contains only ASCII digits
func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidIDNumber validates the document number for the given document type.
// South African IDs are exactly 13 digits; a licence presented as the ID
// document follows the numeric-only licence rule; passports only need a
// non-empty number since formats vary by issuing country.
func ValidIDNumber(t DocumentType, number string) bool {
	switch t {
	case DocumentTypeSAID:
		return len(number) == 13 && numeric(number)
	case DocumentTypeDriversLicense:
		return numeric(number)
	case DocumentTypePassport:
		return number != ""
	default:
		return false
	}
}

// ValidLicenseNumber validates the driver's licence number (numeric-only)
func ValidLicenseNumber(number string) bool {
	return numeric(number)
}
