package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the opaque unique identifier of the user. It is used as a
	// foreign key throughout the schema and as the JWT subject.
	ID string `json:"userId" db:"user_id"`

	// Email is the user's email address. Unique across all users.
	Email string `json:"email" db:"email"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// FullName is the user's display or full name.
	FullName string `json:"fullName" db:"full_name"`

	// Age is the user's age as provided at signup.
	Age int `json:"age" db:"age"`

	// Birthdate is an optional ISO8601 date string. It is stored but not
	// collected at signup.
	Birthdate string `json:"birthdate,omitempty" db:"birthdate"`

	// Address is the user's address.
	Address string `json:"address" db:"address"`

	// PhoneNumber is stored as text to preserve leading zeros.
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`

	// Category classifies the account
	// (e.g., "regular-user", "digital-artist", "artist").
	Category string `json:"category" db:"category"`

	// ProfilePicture is the object-storage key of the user's avatar,
	// empty when no avatar has been uploaded.
	ProfilePicture string `json:"profile_picture,omitempty" db:"profile_picture"`

	// PasswordHash stores the bcrypt digest of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"account_date_creation" db:"account_date_creation"`
}
