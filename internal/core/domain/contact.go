package domain

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9+_.-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{10,}$`)
	phoneStrip   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// Email is a validated, lower-cased email address
type Email struct {
	value string
}

// NewEmail trims and lower-cases raw before validating it
func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Email{}, ErrInvalidMemberData.OnField("email", "email is required")
	}
	if !emailPattern.MatchString(v) {
		return Email{}, ErrInvalidMemberData.OnField("email", "invalid email format: %s", raw)
	}
	return Email{value: v}, nil
}

func (e Email) String() string { return e.value }
func (e Email) IsZero() bool   { return e.value == "" }

// Domain returns the part after the @
func (e Email) Domain() string {
	if i := strings.LastIndexByte(e.value, '@'); i >= 0 {
		return e.value[i+1:]
	}
	return ""
}

// LocalPart returns the part before the @
func (e Email) LocalPart() string {
	if i := strings.LastIndexByte(e.value, '@'); i >= 0 {
		return e.value[:i]
	}
	return e.value
}

// PhoneNumber is a validated phone number stored without separators
type PhoneNumber struct {
	value string
}

// NewPhoneNumber validates raw and strips spaces, dashes and parentheses
func NewPhoneNumber(raw string) (PhoneNumber, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return PhoneNumber{}, ErrInvalidMemberData.OnField("phone", "phone number is required")
	}
	if !phonePattern.MatchString(v) {
		return PhoneNumber{}, ErrInvalidMemberData.OnField("phone", "invalid phone number format: %s", raw)
	}
	cleaned := phoneStrip.Replace(v)
	// at least ten digits must survive the strip
	digits := strings.TrimPrefix(cleaned, "+")
	if len(digits) < 10 {
		return PhoneNumber{}, ErrInvalidMemberData.OnField("phone", "phone number must contain at least 10 digits: %s", raw)
	}
	return PhoneNumber{value: cleaned}, nil
}

func (p PhoneNumber) String() string { return p.value }
func (p PhoneNumber) IsZero() bool   { return p.value == "" }

// Formatted renders ten digit numbers as (XXX) XXX-XXXX
func (p PhoneNumber) Formatted() string {
	if len(p.value) == 10 && !strings.HasPrefix(p.value, "+") {
		return "(" + p.value[:3] + ") " + p.value[3:6] + "-" + p.value[6:]
	}
	return p.value
}

// RestoreEmail rebuilds an Email from storage without validation
func RestoreEmail(v string) Email { return Email{value: v} }

// RestorePhoneNumber rebuilds a PhoneNumber from storage without validation
func RestorePhoneNumber(v string) PhoneNumber { return PhoneNumber{value: v} }
