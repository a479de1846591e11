package domain

import "time"

// Credential Model (identity record owned by the credential service)
type Credential struct {
	ID           uint      `gorm:"primaryKey"`      // Primary key, issued to the matching User row
	Email        string    `gorm:"unique;not null"` // Login email
	PasswordHash string    `gorm:"not null"`        // Bcrypt password hash
	CreatedAt    time.Time // Timestamp of creation
}
