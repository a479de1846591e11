package domain

import "time"

// User Model (profile row; shares its ID with the credential record)
type User struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`                          // Primary key, equal to Credential.ID
	Email                  string    `gorm:"unique;not null" json:"email"`                  // User email address
	EmailConfirmationToken *string   `gorm:"uniqueIndex" json:"-"`                          // Single-use confirmation token, cleared on redemption
	EmailConfirmed         bool      `gorm:"not null;default:false" json:"email_confirmed"` // Whether the email has been confirmed
	CreatedAt              time.Time `json:"created_at"`                                    // Timestamp of registration
}
