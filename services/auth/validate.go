package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	minPasswordLen = 6
	minPhoneLen    = 10
)

var validate = validator.New()

// ValidEmail checks the address format only; deliverability is the backend's problem.
func ValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func ValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLen
}

// ValidPhone requires something that looks like a number with a country code.
func ValidPhone(phone string) bool {
	return len(strings.TrimSpace(phone)) >= minPhoneLen
}
