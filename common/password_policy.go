package common

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 20
)

var (
	ErrPasswordLength   = fmt.Errorf("password must be between %d and %d characters", PasswordMinLength, PasswordMaxLength)
	ErrPasswordNoLetter = errors.New("password must contain at least one letter")
	ErrPasswordNoDigit  = errors.New("password must contain at least one digit")
	ErrPasswordNoSymbol = errors.New("password must contain at least one special character")
)

// ValidatePasswordComplexity enforces the complexity policy: 8 to 20
// characters with at least one ASCII letter, one digit and one symbol.
// Underscore and whitespace do not count as symbols.
func ValidatePasswordComplexity(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return ErrPasswordLength
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsSpace(r), r == '_':
		default:
			hasSymbol = true
		}
	}

	switch {
	case !hasLetter:
		return ErrPasswordNoLetter
	case !hasDigit:
		return ErrPasswordNoDigit
	case !hasSymbol:
		return ErrPasswordNoSymbol
	}
	return nil
}
