package password

import (
	"strings"
	"unicode"
)

// MinLength is the minimum password length accepted at enrollment.
const MinLength = 8

// symbols is the fixed special-character set a password must draw from.
const symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// commonPasswords is a deliberately small deny list of passwords seen in
// every breach corpus. Matching is case-insensitive.
var commonPasswords = []string{
	"password", "password123", "12345678", "qwerty123",
	"admin123", "welcome123", "letmein123",
}

// Result is the outcome of a strength validation.
type Result struct {
	Valid bool
	// Errors holds every violated rule, not just the first.
	Errors []error
}

// ValidateStrength checks a password against the enrollment policy.
//
// Unlike the enrollment chain itself, this check does not short-circuit:
// all violated rules are collected so the caller can report them at once.
func ValidateStrength(plain string) Result {
	var errs []error

	if len([]rune(plain)) < MinLength {
		errs = append(errs, ErrTooShort)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		errs = append(errs, ErrNoUppercase)
	}
	if !hasLower {
		errs = append(errs, ErrNoLowercase)
	}
	if !hasDigit {
		errs = append(errs, ErrNoDigit)
	}
	if !hasSymbol {
		errs = append(errs, ErrNoSymbol)
	}

	lower := strings.ToLower(plain)
	for _, common := range commonPasswords {
		if lower == common {
			errs = append(errs, ErrTooCommon)
			break
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Strength scores a password 0..4 for advisory UI feedback.
// It is additive and independent of ValidateStrength: it must never gate
// enrollment, only inform it.
func Strength(plain string) int {
	score := 0
	runes := []rune(plain)

	if len(runes) >= 8 {
		score++
	}
	if len(runes) >= 12 {
		score++
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbols, r):
			hasSymbol = true
		}
	}

	if hasUpper && hasLower {
		score++
	}
	if hasDigit {
		score++
	}
	if hasSymbol {
		score++
	}

	if score > 4 {
		score = 4
	}
	return score
}
