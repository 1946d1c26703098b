package entities

import (
	"strings"
	"time"
)

// User is an account that can log in and own conversation history.
type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	Email        string    `json:"email" bson:"email" db:"email"`
	PasswordHash string    `json:"-" bson:"password_hash" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// NormalizeEmail lower-cases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) Validate() error {
	if u.Email == "" {
		return validationError("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return validationError("email is invalid")
	}
	if u.PasswordHash == "" {
		return validationError("password hash is required")
	}
	return nil
}
