package checkin

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"checkin-desk/internal/models"
)

func TestCheckSessionCode(t *testing.T) {
	codes := map[string]string{"Morning": "146865"}

	assert.True(t, CheckSessionCode(codes, "Morning", "146865"))
	assert.False(t, CheckSessionCode(codes, "Morning", "000000"))
	assert.False(t, CheckSessionCode(codes, "Morning", "146865 "), "no trimming")
	assert.False(t, CheckSessionCode(codes, "Morning", ""))
	assert.False(t, CheckSessionCode(codes, "Evening", "146865"), "unknown session")
}

func TestValidateWalkIn(t *testing.T) {
	cases := []struct {
		name, email, phone string
		want               models.ValidationResult
	}{
		{"Bob", "bob@example.com", "012 3456789", models.Ok},
		{"", "bob@example.com", "0123456789", models.MissingFields},
		{"Bob", "", "0123456789", models.MissingFields},
		{"Bob", "bob@example.com", "", models.MissingFields},
		{"Bob", "bob#example.com", "0123456789", models.InvalidEmail},
		{"Bob", "bob@example", "0123456789", models.InvalidEmail},
		{"Bob", "bob.example.com", "0123456789", models.InvalidEmail},
		{"Bob", "bob@example.com", "012-345", models.InvalidPhone},
		{"Bob", "bob@example.com", "phone", models.InvalidPhone},
		{"Bob", "bob@example.com", " ", models.InvalidPhone},
		// ordered checks: missing fields reported before the bad email
		{"", "not-an-email", "abc", models.MissingFields},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidateWalkIn(c.name, c.email, c.phone),
			"ValidateWalkIn(%q, %q, %q)", c.name, c.email, c.phone)
	}
}
