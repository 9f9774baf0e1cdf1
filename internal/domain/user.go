// internal/domain/user.go
package domain

import "time"

// User represents a registered account holder.
// Username, email and phone number are unique across the system; the
// identity is immutable after creation except for the profile fields
// (first/last name, email, phone).
type User struct {
	ID           int64     `db:"id" json:"id"`                     // Primary key, BIGSERIAL in DB
	Username     string    `db:"username" json:"username"`         // Unique username
	Email        string    `db:"email" json:"email"`               // Unique email
	PhoneNumber  string    `db:"phone_number" json:"phone_number"` // Unique phone number
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	PasswordHash string    `db:"password_hash" json:"-"` // bcrypt hash, never serialized
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewUser creates a new User instance.
func NewUser(username, email, phoneNumber, firstName, lastName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PhoneNumber:  phoneNumber,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
