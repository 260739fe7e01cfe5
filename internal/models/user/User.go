package user

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// PasswordMinLength is the shortest password accepted at registration.
const PasswordMinLength = 10

var (
	// ErrPasswordTooShort is returned when a password has fewer than PasswordMinLength characters.
	ErrPasswordTooShort = errors.New("password must be at least 10 characters long")
	// ErrPasswordNoLower is returned when a password has no lower-case letter.
	ErrPasswordNoLower = errors.New("password must contain a lower-case letter")
	// ErrPasswordNoUpper is returned when a password has no upper-case letter.
	ErrPasswordNoUpper = errors.New("password must contain an upper-case letter")
	// ErrPasswordNoDigit is returned when a password has no digit.
	ErrPasswordNoDigit = errors.New("password must contain a digit")
	// ErrPasswordNoSpecial is returned when a password has no character that is neither a letter nor a digit.
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
)

// User represents a user in the system. ID is an opaque string; environments reference it as their owner.
type User struct {
	ID                string `bson:"_id,omitempty"`
	Username          string `bson:"username"`
	EncryptedPassword string `bson:"encrypted_password"`
}

// SetPassword sets a new password for the user. Encrypts the password using bcrypt.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.EncryptedPassword = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password is correct.
// Returns nil on success, or error on failure
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.EncryptedPassword), []byte(password))
}

// ValidatePassword checks the registration password policy and returns the first rule that fails.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return ErrPasswordTooShort
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasLower:
		return ErrPasswordNoLower
	case !hasUpper:
		return ErrPasswordNoUpper
	case !hasDigit:
		return ErrPasswordNoDigit
	case !hasSpecial:
		return ErrPasswordNoSpecial
	}
	return nil
}
