package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sakif/event-saas/internal/apperror"
)

// emailPattern is deliberately loose: one local part, one domain, one TLD.
// Full RFC 5322 validation is not worth the complexity: the address is only
// used as a login identifier, and a confirmation mail would be the real check.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxEmailLength is the RFC 3696 upper bound for a complete address.
const maxEmailLength = 320

// EmailAddress is a validated email value object.
//
// Construction is the only gate: once a value of this type exists, every layer
// below the handlers can assume it holds a syntactically valid address.
// EmailAddress compares by value and its string form is the raw address, so it
// is safe to use directly as a map key or in log output.
type EmailAddress struct {
	value string
}

// NewEmailAddress validates raw and returns it as an EmailAddress.
// It fails with apperror.ErrValidation for blank input, input longer than
// 320 characters, or anything that does not look like local@domain.tld.
func NewEmailAddress(raw string) (EmailAddress, error) {
	if strings.TrimSpace(raw) == "" {
		return EmailAddress{}, apperror.ValidationFailed("email", "email must not be blank")
	}
	if len(raw) > maxEmailLength {
		return EmailAddress{}, apperror.ValidationFailed("email", fmt.Sprintf("email must be %d characters or less", maxEmailLength))
	}
	if !emailPattern.MatchString(raw) {
		return EmailAddress{}, apperror.ValidationFailed("email", fmt.Sprintf("invalid email format: %s", raw))
	}
	return EmailAddress{value: raw}, nil
}

// String returns the raw address, never a wrapper-style debug string.
func (e EmailAddress) String() string {
	return e.value
}

// IsZero reports whether e is the uninitialised zero value.
func (e EmailAddress) IsZero() bool {
	return e.value == ""
}
