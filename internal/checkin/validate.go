package checkin

import (
	"strings"

	"checkin-desk/internal/models"
)

// CheckSessionCode is exact string equality against the configured code
// for that session. No trimming, no case folding: the desk code is typed
// as-is or rejected.
func CheckSessionCode(codes map[string]string, session, entered string) bool {
	code, ok := codes[session]
	return ok && entered == code
}

// ValidateWalkIn runs the walk-in form checks in order; the first failing
// check wins.
func ValidateWalkIn(name, email, phone string) models.ValidationResult {
	if name == "" || email == "" || phone == "" {
		return models.MissingFields
	}
	// deliberately weak: "@" plus "." catches typos, full RFC 5322 would
	// reject addresses people actually have
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return models.InvalidEmail
	}
	digits := strings.ReplaceAll(phone, " ", "")
	if digits == "" {
		return models.InvalidPhone
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return models.InvalidPhone
		}
	}
	return models.Ok
}
