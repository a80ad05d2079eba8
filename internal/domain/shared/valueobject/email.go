package valueobject

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// emailPattern is deliberately loose: local@domain.tld
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrInvalidEmail is returned for addresses that do not look like local@domain.tld
var ErrInvalidEmail = errors.New("invalid email address")

// Email is a normalized (trimmed, lower-cased) e-mail address
type Email struct {
	value string
}

// NewEmail validates and normalizes raw
func NewEmail(raw string) (Email, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(v) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: v}, nil
}

// MustNewEmail is NewEmail that panics, for tests and constants
func MustNewEmail(raw string) Email {
	e, err := NewEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) String() string { return e.value }

func (e Email) IsEmpty() bool { return e.value == "" }

func (e Email) Equals(other Email) bool { return e.value == other.value }

// Domain returns the part after the @
func (e Email) Domain() string {
	if i := strings.LastIndexByte(e.value, '@'); i >= 0 {
		return e.value[i+1:]
	}
	return ""
}

func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.value)
}

func (e *Email) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewEmail(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
