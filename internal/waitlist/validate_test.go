// internal/waitlist/validate_test.go
package waitlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func validRawSignup() RawSignup {
	return RawSignup{
		FullName:       "Jane Doe",
		Email:          "jane@example.com",
		Role:           "student",
		ReferralSource: "",
	}
}

// ==========================
// Normalization Tests
// ==========================

func TestValidate_NormalizesNameAndEmail(t *testing.T) {
	req, errs := Validate(RawSignup{
		FullName: "  jane DOE ",
		Email:    " JANE@EXAMPLE.COM ",
		Role:     "student",
	})

	assert.Nil(t, errs)
	assert.Equal(t, "Jane Doe", req.FullName)
	assert.Equal(t, "jane@example.com", req.Email)
	assert.Equal(t, RoleStudent, req.Role)
	assert.Nil(t, req.ReferralSource)
}

func TestValidate_NormalizationIsIdempotent(t *testing.T) {
	first, errs := Validate(RawSignup{
		FullName: "  o'brien-SMITH   jr ",
		Email:    " Someone@Example.COM ",
		Role:     "preceptor",
	})
	assert.Nil(t, errs)

	second, errs := Validate(RawSignup{
		FullName: first.FullName,
		Email:    first.Email,
		Role:     string(first.Role),
	})
	assert.Nil(t, errs)
	assert.Equal(t, first.FullName, second.FullName)
	assert.Equal(t, first.Email, second.Email)
}

func TestValidate_KeepsReferralSource(t *testing.T) {
	raw := validRawSignup()
	raw.ReferralSource = "  Google search "

	req, errs := Validate(raw)

	assert.Nil(t, errs)
	assert.NotNil(t, req.ReferralSource)
	assert.Equal(t, "Google search", *req.ReferralSource)
}

// ==========================
// Rejection Tests
// ==========================

func TestValidate_RejectsDigitsInName(t *testing.T) {
	raw := validRawSignup()
	raw.FullName = "John123"

	req, errs := Validate(raw)

	assert.Nil(t, req)
	assert.Equal(t, "Name contains invalid characters", errs["fullName"])
}

func TestValidate_RejectsShortAndLongNames(t *testing.T) {
	raw := validRawSignup()
	raw.FullName = " a "

	_, errs := Validate(raw)
	assert.Equal(t, "Name must be at least 2 characters", errs["fullName"])

	raw.FullName = strings.Repeat("a", 101)
	_, errs = Validate(raw)
	assert.Equal(t, "Name must be less than 100 characters", errs["fullName"])
}

func TestValidate_RejectsBadEmail(t *testing.T) {
	for _, email := range []string{"", "plainaddress", "no@tld", "two@@example.com", "spaces in@example.com"} {
		raw := validRawSignup()
		raw.Email = email

		req, errs := Validate(raw)
		assert.Nil(t, req, "email %q should be rejected", email)
		assert.Equal(t, "Please enter a valid email address", errs["email"])
	}
}

func TestValidate_RejectsOverlongEmail(t *testing.T) {
	raw := validRawSignup()
	raw.Email = strings.Repeat("a", 250) + "@example.com"

	_, errs := Validate(raw)
	assert.Equal(t, "Email must be less than 255 characters", errs["email"])
}

func TestValidate_RejectsUnknownRole(t *testing.T) {
	raw := validRawSignup()
	raw.Role = "astronaut"

	req, errs := Validate(raw)

	assert.Nil(t, req)
	assert.Equal(t, "Please select your role", errs["role"])
}

func TestValidate_RejectsOverlongReferral(t *testing.T) {
	raw := validRawSignup()
	raw.ReferralSource = strings.Repeat("x", 256)

	_, errs := Validate(raw)
	assert.Equal(t, "Referral source must be less than 255 characters", errs["referralSource"])
}

func TestValidate_CollectsErrorsPerField(t *testing.T) {
	req, errs := Validate(RawSignup{
		FullName: "x",
		Email:    "nope",
		Role:     "",
	})

	assert.Nil(t, req)
	assert.Len(t, errs, 3)
	assert.Contains(t, errs.Error(), "fullName")
}

func TestValidate_AcceptsAllRoles(t *testing.T) {
	for _, role := range Roles {
		raw := validRawSignup()
		raw.Role = string(role)

		req, errs := Validate(raw)
		assert.Nil(t, errs)
		assert.Equal(t, role, req.Role)
	}
}
