package validation

import (
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername validates username format
func ValidateUsername(username string) bool {
	username = strings.TrimSpace(username)
	if len(username) < 1 || len(username) > 30 {
		return false
	}
	return usernameRegex.MatchString(username)
}

// ValidatePassword checks the minimal password requirement. The backend
// accepts passwords as-is beyond non-emptiness; strength policy lives in
// the frontend.
func ValidatePassword(password string) bool {
	return len(password) > 0
}

// SanitizeString removes potentially harmful characters
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}
