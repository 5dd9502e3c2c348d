package common

import (
	"errors"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// Blank reports whether any of the values is empty after trimming.
func Blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// ValidateEmail checks the format only; stored emails keep their original case.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.ToLower(strings.TrimSpace(email))) {
		return errors.New("invalid email format")
	}
	return nil
}
