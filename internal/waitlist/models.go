// internal/waitlist/models.go
package waitlist

import "time"

// Role is the closed set of submitter categories. It drives which welcome
// message variant is sent.
type Role string

const (
	RoleStudent   Role = "student"
	RolePreceptor Role = "preceptor"
	RoleSchool    Role = "school"
)

// Roles lists every accepted role value.
var Roles = []Role{RoleStudent, RolePreceptor, RoleSchool}

// Valid reports whether r is one of the accepted roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RolePreceptor, RoleSchool:
		return true
	}
	return false
}

// SignupRequest is a normalized, validated waitlist signup. It is immutable
// once constructed and discarded after the pipeline finishes.
type SignupRequest struct {
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	Role           Role    `json:"role"`
	ReferralSource *string `json:"referralSource,omitempty"`
}

// SignupRecord is a SignupRequest plus the server-assigned identifier and
// creation timestamp. It is created exactly once per accepted request and
// owned by the store afterwards.
type SignupRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	SignupRequest
}

// RawSignup carries the untrusted form values before validation.
type RawSignup struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ReferralSource string `json:"referralSource"`
}
