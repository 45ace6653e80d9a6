// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered identity.
// Email and UserName are unique regardless of case, enforced through their normalized columns.
type User struct {
	// ID is an opaque, stable identifier (uuid string).
	ID string `gorm:"primaryKey;size:36"`

	UserName           string `gorm:"size:256;not null"`
	NormalizedUserName string `gorm:"uniqueIndex;size:256;not null"`

	Email           string `gorm:"size:256;not null"`
	NormalizedEmail string `gorm:"uniqueIndex;size:256;not null"`

	// PasswordHash is the bcrypt hash. Plaintext passwords are never stored.
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
