package domain

import (
	"time"

	"roomcast/pkg/validation"
)

const maxNameGraphemes = 255

// User is a registered participant. The password hash never travels on this
// type.
type User struct {
	ID        UserID    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser carries validated signup input. Construct via ParseNewUser only.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Code     string
}

// ParseNewUser validates all signup fields before any of them reach business
// logic or storage.
func ParseNewUser(name, email, password, code string) (NewUser, error) {
	if err := validation.ValidateName(name, maxNameGraphemes); err != nil {
		return NewUser{}, NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return NewUser{}, NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return NewUser{}, NewValidationError(err.Error())
	}
	if err := validation.ValidateCode(code); err != nil {
		return NewUser{}, NewValidationError(err.Error())
	}
	return NewUser{Name: name, Email: email, Password: password, Code: code}, nil
}

// Credentials is transient login input. Never persisted, never logged.
type Credentials struct {
	Email    string
	Password string
}
