// internal/waitlist/validate.go
package waitlist

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLength     = 2
	maxNameLength     = 100
	maxEmailLength    = 255
	maxReferralLength = 255
)

var (
	nameCharset = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	emailSyntax = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// FieldErrors maps field names to user-facing validation messages. These are
// shown inline next to the form field and never reach persistence or
// notification.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// Validate normalizes raw form values into a SignupRequest or returns the
// field-scoped error set. Normalization is idempotent: validating an already
// normalized value yields the same value.
func Validate(raw RawSignup) (*SignupRequest, FieldErrors) {
	errs := FieldErrors{}

	name := strings.TrimSpace(raw.FullName)
	switch {
	case utf8.RuneCountInString(name) < minNameLength:
		errs["fullName"] = "Name must be at least 2 characters"
	case utf8.RuneCountInString(name) > maxNameLength:
		errs["fullName"] = "Name must be less than 100 characters"
	case !nameCharset.MatchString(name):
		errs["fullName"] = "Name contains invalid characters"
	}

	email := strings.ToLower(strings.TrimSpace(raw.Email))
	switch {
	case utf8.RuneCountInString(email) > maxEmailLength:
		errs["email"] = "Email must be less than 255 characters"
	case !emailSyntax.MatchString(email):
		errs["email"] = "Please enter a valid email address"
	}

	role := Role(raw.Role)
	if !role.Valid() {
		errs["role"] = "Please select your role"
	}

	referral := strings.TrimSpace(raw.ReferralSource)
	if utf8.RuneCountInString(referral) > maxReferralLength {
		errs["referralSource"] = "Referral source must be less than 255 characters"
	}

	if len(errs) > 0 {
		return nil, errs
	}

	req := &SignupRequest{
		FullName: formatName(name),
		Email:    email,
		Role:     role,
	}
	if referral != "" {
		req.ReferralSource = &referral
	}
	return req, nil
}

// formatName title-cases each whitespace-delimited token: first letter
// upper-cased, remainder lower-cased.
func formatName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}
