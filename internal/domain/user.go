package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing email.
	ErrUserAlreadyExists = NewError(KindConflict, "A user with this email already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = NewError(KindNotFound, "User not found")
	// ErrInvalidCredentials is returned when the email/password combination is incorrect.
	// Unknown emails and wrong passwords both produce this exact error.
	ErrInvalidCredentials = NewError(KindUnauthorized, "Incorrect email or password")
	// ErrNoEmail is returned when the email is missing from a request.
	ErrNoEmail = NewError(KindBadRequest, "Email is required")
	// ErrNoPassword is returned when the password is missing from a request.
	ErrNoPassword = NewError(KindBadRequest, "Password is required")
	// ErrEmptyProfileUpdate is returned when a profile update changes nothing.
	ErrEmptyProfileUpdate = NewError(KindBadRequest, "Nothing to update")
	// ErrPasswordTooLong is returned for passwords the hasher would truncate.
	ErrPasswordTooLong = NewError(KindBadRequest, "Password must be at most 72 bytes")
)

const (
	NameMinLength = 2
	NameMaxLength = 30

	// PasswordMaxBytes is the longest password bcrypt accepts.
	PasswordMaxBytes = 72
)

// User represents a registered user. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile holds the user fields that are not credentials.
type Profile struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// SignupRequest is the body of a signup call.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// Profile returns the non-credential part of the request.
func (r SignupRequest) Profile() Profile {
	return Profile{Name: r.Name, Avatar: r.Avatar}
}

// Credentials is the body of a login call.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is a partial Profile; nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// IsEmpty reports whether the update changes no field.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Name == nil && u.Avatar == nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrNoEmail
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return BadRequestf("Invalid email address")
	}

	return nil
}

// Validate checks the profile fields.
func (p Profile) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}

	if err := ValidateURL("avatar", p.Avatar); err != nil {
		return err
	}

	return nil
}

// Validate checks the fields present in the update.
func (u ProfileUpdate) Validate() error {
	if u.IsEmpty() {
		return ErrEmptyProfileUpdate
	}

	if u.Name != nil {
		if err := validateName(*u.Name); err != nil {
			return err
		}
	}

	if u.Avatar != nil {
		if err := ValidateURL("avatar", *u.Avatar); err != nil {
			return err
		}
	}

	return nil
}

// ValidatePassword checks that a new password is present and hashable.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrNoPassword
	case len(password) > PasswordMaxBytes:
		return ErrPasswordTooLong
	default:
		return nil
	}
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < NameMinLength || n > NameMaxLength {
		return BadRequestf("Name must be between %d and %d characters", NameMinLength, NameMaxLength)
	}

	return nil
}
