package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

var (
	// EmailRegex validates email format
	EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// CodeRegex validates invite/membership code format
	CodeRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// forbiddenNameCharacters are rejected in user and room names.
var forbiddenNameCharacters = []rune{'/', '(', ')', '"', '<', '>', '\\', '{', '}'}

// ValidateEmail validates email address
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("email is too long (max 254 characters)")
	}
	if !EmailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateName validates a display name (user or room). Names count by
// grapheme cluster, not byte or rune, so combining sequences are one unit.
func ValidateName(name string, maxGraphemes int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if GraphemeCount(name) > maxGraphemes {
		return fmt.Errorf("name is too long (max %d characters)", maxGraphemes)
	}
	if ContainsForbiddenCharacters(name) {
		return fmt.Errorf("name contains invalid characters")
	}
	return nil
}

// ValidatePassword validates password
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password is too long (max 128 characters)")
	}
	return nil
}

// ValidateCode validates an invite code
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("code is required")
	}
	if len(code) > 100 {
		return fmt.Errorf("code is too long (max 100 characters)")
	}
	if !CodeRegex.MatchString(code) {
		return fmt.Errorf("invalid code format")
	}
	return nil
}

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// ContainsForbiddenCharacters reports whether s contains a character rejected
// in names.
func ContainsForbiddenCharacters(s string) bool {
	return strings.ContainsAny(s, string(forbiddenNameCharacters))
}
